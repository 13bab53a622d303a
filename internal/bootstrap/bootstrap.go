// Package bootstrap assembles the service graph shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"assetproxy/internal/adapter/repo"
	"assetproxy/internal/domain"
	"assetproxy/internal/infra"
	"assetproxy/internal/metrics"
	"assetproxy/internal/pipeline"
	"assetproxy/internal/providers/rbxmeta"
	"assetproxy/internal/providers/roblox"
	"assetproxy/internal/storage"
)

// Components is everything a binary needs to serve or run downloads.
type Components struct {
	Config  *infra.Config
	Metrics *metrics.Metrics
	Store   domain.BlobStore
	History domain.DownloadRepository
	Client  *roblox.Client
	Service *pipeline.Service

	pool *pgxpool.Pool
}

// Build wires storage, history, the upstream client and the pipeline from cfg.
func Build(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (*Components, error) {
	logger = infra.OrDiscard(logger)
	c := &Components{Config: cfg, Metrics: metrics.New()}

	store, err := NewBlobStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.Store = store

	if err := c.openHistory(ctx, logger); err != nil {
		return nil, err
	}

	client, err := roblox.NewClient(roblox.Options{
		CatalogBaseURL:  cfg.CatalogBaseURL,
		DeliveryBaseURL: cfg.DeliveryBaseURL,
		Endpoints:       cfg.ActiveEndpoints(),
		VerifyMode:      roblox.VerifyMode(cfg.VerifyMode),
		Timeout:         cfg.UpstreamTimeout,
		MaxRedirects:    cfg.MaxRedirects,
		CookieName:      cfg.CookieName,
		MaxPayloadBytes: cfg.MaxPayloadBytes,
		Logger:          logger,
		Observer:        c.Metrics,
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Client = client

	var extractor pipeline.MetadataExtractor
	if cfg.XMLEnrichment {
		extractor = rbxmeta.NewExtractor(logger)
	}
	assembler := pipeline.NewAssembler(pipeline.AssemblerOptions{
		Policy:        pipeline.NewPolicy(cfg.AllowedTypes),
		Filenames:     pipeline.FilenameGenerator{Timestamp: cfg.FilenameTimestamp},
		Persist:       cfg.DeliveryMode == infra.DeliveryModePersist,
		Store:         store,
		PublicBaseURL: cfg.PublicBaseURL,
		Extractor:     extractor,
		Logger:        logger,
	})
	svc, err := pipeline.NewService(pipeline.Options{
		Resolver:  client,
		Fetcher:   client,
		Assembler: assembler,
		History:   c.History,
		Observer:  c.Metrics,
		BatchMax:  cfg.BatchMax,
		Logger:    logger,
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Service = svc
	return c, nil
}

func (c *Components) openHistory(ctx context.Context, logger *infra.Logger) error {
	pool, err := infra.NewDBPool(ctx, c.Config)
	if err != nil {
		return err
	}
	if pool == nil {
		c.History = repo.NoopDownloadRepository{}
		return nil
	}
	history := repo.NewDownloadRepository(infra.NewSQLRunner(pool, *logger))
	if err := history.EnsureSchema(ctx); err != nil {
		pool.Close()
		return err
	}
	c.pool = pool
	c.History = history
	logger.Info().Msg("download history enabled")
	return nil
}

// Close releases the database pool, if any.
func (c *Components) Close() {
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}

// NewBlobStore returns the configured blob backend.
func NewBlobStore(ctx context.Context, cfg *infra.Config) (domain.BlobStore, error) {
	switch cfg.BlobBackend {
	case infra.BlobBackendS3:
		store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:      cfg.S3.Bucket,
			Region:      cfg.S3.Region,
			EndpointURL: cfg.S3.EndpointURL,
			AccessKey:   cfg.S3.AccessKey,
			SecretKey:   cfg.S3.SecretKey,
			Prefix:      cfg.S3.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case infra.BlobBackendFS, "":
		store, err := storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}
