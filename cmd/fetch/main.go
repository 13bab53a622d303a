// Command fetch runs the download pipeline for asset IDs given on the
// command line and prints the results as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"assetproxy/internal/bootstrap"
	"assetproxy/internal/domain"
	"assetproxy/internal/infra"
	"assetproxy/internal/pipeline"
)

type options struct {
	cookie  string
	placeID string
	info    bool
	ids     []string
}

func parseArgs(args []string, cfg *infra.Config) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("fetch", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	apply := infra.BindFlags(fs, cfg)
	fs.StringVar(&opts.cookie, "cookie", os.Getenv("ROBLOX_COOKIE"), "session cookie value passed to the upstream")
	fs.StringVar(&opts.placeID, "place-id", "", "place ID for place-scoped assets")
	fs.BoolVar(&opts.info, "info", false, "resolve metadata only")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if err := apply(); err != nil {
		return opts, err
	}
	opts.ids = fs.Args()
	if len(opts.ids) == 0 {
		return opts, fmt.Errorf("usage: fetch [flags] <assetId>...")
	}
	return opts, nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	opts, err := parseArgs(os.Args[1:], cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := infra.NewLogger(cfg.AppEnv).Output(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comps, err := bootstrap.Build(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build service")
	}
	defer comps.Close()

	out, failed := run(ctx, comps.Service, opts)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
	if failed > 0 {
		os.Exit(1)
	}
}

type runner interface {
	Info(ctx context.Context, assetID, credential string) (*domain.AssetMetadata, error)
	Batch(ctx context.Context, req domain.BatchRequest) ([]domain.BatchItem, error)
}

func run(ctx context.Context, svc runner, opts options) (any, int) {
	if opts.info {
		results := make([]map[string]any, 0, len(opts.ids))
		failed := 0
		for _, id := range opts.ids {
			meta, err := svc.Info(ctx, id, opts.cookie)
			if err != nil {
				failed++
				results = append(results, map[string]any{"assetId": id, "success": false, "error": err.Error()})
				continue
			}
			results = append(results, map[string]any{
				"assetId":   id,
				"success":   true,
				"assetType": meta.Type.Canonical(),
				"assetName": meta.Name,
				"creator":   meta.Creator,
			})
		}
		return results, failed
	}

	items, err := svc.Batch(ctx, domain.BatchRequest{AssetIDs: opts.ids, Credential: opts.cookie, PlaceID: opts.placeID})
	if err != nil {
		return map[string]any{"success": false, "error": err.Error()}, len(opts.ids)
	}
	succeeded, failed := pipeline.Tally(items)
	return map[string]any{"success": true, "results": items, "succeeded": succeeded, "failed": failed}, failed
}
