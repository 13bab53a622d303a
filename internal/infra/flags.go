package infra

import (
	"github.com/spf13/pflag"
)

// BindFlags registers command-line overrides for cfg on fs, using the values
// already loaded from the environment as defaults. The returned function must
// run after fs.Parse; it applies the list-valued flags and revalidates.
func BindFlags(fs *pflag.FlagSet, cfg *Config) func() error {
	fs.StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	fs.StringVar(&cfg.PublicBaseURL, "public-base-url", cfg.PublicBaseURL, "base URL used in persisted download links")
	fs.StringVar(&cfg.FetchMode, "fetch-mode", cfg.FetchMode, "single or mirrors")
	fs.StringVar(&cfg.VerifyMode, "verify-mode", cfg.VerifyMode, "head or body")
	fs.StringVar(&cfg.DeliveryMode, "delivery-mode", cfg.DeliveryMode, "redirect or persist")
	fs.StringVar(&cfg.BlobBackend, "blob-backend", cfg.BlobBackend, "fs or s3")
	fs.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "directory for the fs blob backend")
	fs.IntVar(&cfg.BatchMax, "batch-max", cfg.BatchMax, "largest accepted batch")
	fs.BoolVar(&cfg.FilenameTimestamp, "filename-timestamp", cfg.FilenameTimestamp, "append unix millis to generated filenames")
	fs.BoolVar(&cfg.XMLEnrichment, "xml-enrichment", cfg.XMLEnrichment, "fill placeholder metadata from XML payloads")
	fs.DurationVar(&cfg.UpstreamTimeout, "upstream-timeout", cfg.UpstreamTimeout, "per-call upstream timeout")

	endpoints := fs.StringSlice("fetch-endpoints", cfg.FetchEndpoints, "candidate endpoints in priority order (max 3)")
	var current []string
	for _, t := range cfg.AllowedTypes {
		current = append(current, string(t))
	}
	allowed := fs.StringSlice("allowed-types", current, "asset types to deliver; empty allows all")

	return func() error {
		if fs.Changed("fetch-endpoints") {
			cfg.FetchEndpoints = *endpoints
		}
		if fs.Changed("allowed-types") {
			types, err := ParseAssetTypes(*allowed)
			if err != nil {
				return err
			}
			cfg.AllowedTypes = types
		}
		return cfg.Validate()
	}
}
