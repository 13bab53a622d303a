package repo

import (
	"context"
	"fmt"

	"assetproxy/internal/domain"
	"assetproxy/internal/infra"
	"assetproxy/internal/sqlinline"
)

const maxHistoryLimit = 200

// DownloadRepositoryPG stores download history in PostgreSQL.
type DownloadRepositoryPG struct {
	db infra.SQLExecutor
}

// NewDownloadRepository constructs the repository over a marker-checking runner.
func NewDownloadRepository(db infra.SQLExecutor) *DownloadRepositoryPG {
	return &DownloadRepositoryPG{db: db}
}

// EnsureSchema creates the history table when it is missing.
func (r *DownloadRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, sqlinline.QCreateDownloadsTable); err != nil {
		return fmt.Errorf("create asset_downloads: %w", err)
	}
	return nil
}

// Record inserts one history row.
func (r *DownloadRepositoryPG) Record(ctx context.Context, rec domain.DownloadRecord) error {
	var id int64
	err := r.db.QueryRow(ctx, sqlinline.QInsertDownload,
		rec.AssetID,
		string(rec.AssetType.Canonical()),
		rec.Filename,
		rec.SourceURL,
		rec.Success,
		rec.Error,
		rec.RequestID,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert download: %w", err)
	}
	return nil
}

// ListRecent returns the newest rows first. limit is clamped to [1, 200].
func (r *DownloadRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.DownloadRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	rows, err := r.db.Query(ctx, sqlinline.QListRecentDownloads, limit)
	if err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DownloadRecord, 0, limit)
	for rows.Next() {
		var (
			rec       domain.DownloadRecord
			assetType string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.AssetID,
			&assetType,
			&rec.Filename,
			&rec.SourceURL,
			&rec.Success,
			&rec.Error,
			&rec.RequestID,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		rec.AssetType = domain.AssetType(assetType)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate downloads: %w", err)
	}
	return out, nil
}

// NoopDownloadRepository is used when no database is configured.
type NoopDownloadRepository struct{}

func (NoopDownloadRepository) Record(context.Context, domain.DownloadRecord) error {
	return domain.ErrHistoryDisabled
}

func (NoopDownloadRepository) ListRecent(context.Context, int) ([]domain.DownloadRecord, error) {
	return nil, domain.ErrHistoryDisabled
}

var (
	_ domain.DownloadRepository = (*DownloadRepositoryPG)(nil)
	_ domain.DownloadRepository = NoopDownloadRepository{}
)
