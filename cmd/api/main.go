package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"assetproxy/internal/bootstrap"
	"assetproxy/internal/http/handlers"
	httpapi "assetproxy/internal/http/httpapi"
	"assetproxy/internal/infra"
)

var version = "dev"

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	fs := pflag.NewFlagSet("api", pflag.ExitOnError)
	apply := infra.BindFlags(fs, cfg)
	_ = fs.Parse(os.Args[1:])
	if err := apply(); err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	comps, err := bootstrap.Build(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build service")
	}
	defer comps.Close()

	app := &handlers.App{
		Assets:  comps.Service,
		Store:   comps.Store,
		History: comps.History,
		Logger:  &logger,
		BaseURL: cfg.PublicBaseURL,
		Version: version,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Metrics:         comps.Metrics.Handler(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("delivery_mode", cfg.DeliveryMode).
			Str("fetch_mode", cfg.FetchMode).
			Strs("endpoints", cfg.ActiveEndpoints()).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
