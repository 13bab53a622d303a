package bootstrap

import (
	"context"
	"errors"
	"testing"

	"assetproxy/internal/adapter/repo"
	"assetproxy/internal/domain"
	"assetproxy/internal/infra"
	"assetproxy/internal/storage"
)

func testConfig(t *testing.T) *infra.Config {
	t.Helper()
	return &infra.Config{
		PublicBaseURL:   "http://localhost:3000",
		CatalogBaseURL:  "https://catalog.test",
		DeliveryBaseURL: "https://delivery.test",
		FetchEndpoints:  []string{"https://cdn.test/asset"},
		FetchMode:       infra.FetchModeSingle,
		VerifyMode:      infra.VerifyModeBody,
		DeliveryMode:    infra.DeliveryModePersist,
		BatchMax:        10,
		BlobBackend:     infra.BlobBackendFS,
		StoragePath:     t.TempDir(),
		XMLEnrichment:   true,
	}
}

func TestBuildWithoutDatabase(t *testing.T) {
	c, err := Build(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c.Close()

	if c.Service == nil || c.Client == nil || c.Metrics == nil {
		t.Fatalf("components missing: %+v", c)
	}
	if _, ok := c.Store.(*storage.FileStore); !ok {
		t.Fatalf("store = %T, want *storage.FileStore", c.Store)
	}
	if _, ok := c.History.(repo.NoopDownloadRepository); !ok {
		t.Fatalf("history = %T, want noop", c.History)
	}
	if c.Service.BatchMax() != 10 {
		t.Fatalf("batch max = %d", c.Service.BatchMax())
	}
}

func TestBuildRejectsBadValidationBeforeNetwork(t *testing.T) {
	c, err := Build(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c.Close()
	_, err = c.Service.Download(context.Background(), domain.AssetRequest{AssetID: "abc"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewBlobStoreUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.BlobBackend = "ftp"
	if _, err := NewBlobStore(context.Background(), cfg); err == nil {
		t.Fatalf("expected error")
	}
}
