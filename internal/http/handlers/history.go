package handlers

import (
	"net/http"
	"strconv"

	"assetproxy/internal/domain"
)

type historyEntry struct {
	ID        int64            `json:"id"`
	AssetID   string           `json:"assetId"`
	AssetType domain.AssetType `json:"assetType"`
	Filename  string           `json:"filename,omitempty"`
	SourceURL string           `json:"sourceUrl,omitempty"`
	Success   bool             `json:"success"`
	Error     string           `json:"error,omitempty"`
	RequestID string           `json:"requestId,omitempty"`
	CreatedAt string           `json:"createdAt"`
}

func (a *App) ListHistory(w http.ResponseWriter, r *http.Request) {
	if a.History == nil {
		a.fail(w, r, domain.ErrHistoryDisabled)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	recs, err := a.History.ListRecent(r.Context(), limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]historyEntry, 0, len(recs))
	for _, rec := range recs {
		items = append(items, historyEntry{
			ID:        rec.ID,
			AssetID:   rec.AssetID,
			AssetType: rec.AssetType,
			Filename:  rec.Filename,
			SourceURL: rec.SourceURL,
			Success:   rec.Success,
			Error:     rec.Error,
			RequestID: rec.RequestID,
			CreatedAt: rec.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "items": items})
}
