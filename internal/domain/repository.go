package domain

import (
	"context"
	"io"
)

// BlobStore persists downloaded payloads. Implementations only create, list,
// read and delete whole objects; existing objects are never modified.
type BlobStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
	List(ctx context.Context) ([]BlobInfo, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// DownloadRepository stores the optional download history.
type DownloadRepository interface {
	Record(ctx context.Context, rec DownloadRecord) error
	ListRecent(ctx context.Context, limit int) ([]DownloadRecord, error)
}
