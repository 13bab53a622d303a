package pipeline

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"assetproxy/internal/domain"
)

type fakeResolver struct {
	mu    sync.Mutex
	metas map[string]*domain.AssetMetadata
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, assetID, _ string) (*domain.AssetMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	meta, ok := f.metas[assetID]
	if !ok {
		return nil, errors.New("catalog miss")
	}
	cp := *meta
	return &cp, nil
}

type fakeFetcher struct {
	mu       sync.Mutex
	outcomes map[string]domain.FetchOutcome
	requests []domain.FetchRequest
}

func (f *fakeFetcher) Fetch(_ context.Context, req domain.FetchRequest) domain.FetchOutcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	out, ok := f.outcomes[req.AssetID]
	if !ok {
		return domain.FetchOutcome{Error: "Failed to download asset: HTTP 404", Attempts: 3}
	}
	return out
}

type fakeHistory struct {
	records []domain.DownloadRecord
	err     error
}

func (f *fakeHistory) Record(_ context.Context, rec domain.DownloadRecord) error {
	f.records = append(f.records, rec)
	return f.err
}

func (f *fakeHistory) ListRecent(context.Context, int) ([]domain.DownloadRecord, error) {
	return f.records, nil
}

type failingStore struct{}

func (failingStore) Write(context.Context, string, []byte) (string, error) {
	return "", errors.New("disk full")
}
func (failingStore) List(context.Context) ([]domain.BlobInfo, error) { return nil, nil }
func (failingStore) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, domain.ErrNotFound
}
func (failingStore) Delete(context.Context, string) error { return domain.ErrNotFound }

type countingObserver struct{ outcomes []string }

func (c *countingObserver) ObserveDownload(outcome string) { c.outcomes = append(c.outcomes, outcome) }

func fixedClock() time.Time { return time.UnixMilli(1700000000123) }

func okOutcome(payload string) domain.FetchOutcome {
	return domain.FetchOutcome{
		Success:   true,
		Payload:   []byte(payload),
		SourceURL: "https://assetdelivery.roblox.com/v1/asset?id=1",
		Attempts:  1,
	}
}
