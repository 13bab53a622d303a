package pipeline

import (
	"context"
	"strings"

	"assetproxy/internal/domain"
)

// Batch downloads each asset in order, one at a time. The returned slice is
// aligned with req.AssetIDs; a failed item never aborts the rest. Empty or
// oversized batches are rejected before any outbound call.
func (s *Service) Batch(ctx context.Context, req domain.BatchRequest) ([]domain.BatchItem, error) {
	if len(req.AssetIDs) == 0 {
		return nil, domain.Errorf(domain.ErrValidation, "Asset IDs array is required")
	}
	if len(req.AssetIDs) > s.batchMax {
		return nil, domain.Errorf(domain.ErrValidation, "Maximum %d assets per batch", s.batchMax)
	}
	placeID := strings.TrimSpace(req.PlaceID)
	if placeID != "" && !domain.IsNumericID(placeID) {
		return nil, domain.Errorf(domain.ErrValidation, "Place ID must be numeric")
	}

	items := make([]domain.BatchItem, len(req.AssetIDs))
	for i, id := range req.AssetIDs {
		id = strings.TrimSpace(id)
		items[i].AssetID = id
		result, err := s.Download(ctx, domain.AssetRequest{
			AssetID:    id,
			Credential: req.Credential,
			PlaceID:    placeID,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("asset_id", id).Int("index", i).Msg("batch item failed")
			items[i].Error = err.Error()
			continue
		}
		items[i].Success = true
		items[i].Result = result
	}
	return items, nil
}

// Tally counts successes and failures in a batch result.
func Tally(items []domain.BatchItem) (succeeded, failed int) {
	for _, it := range items {
		if it.Success {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
