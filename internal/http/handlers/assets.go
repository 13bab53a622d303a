package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"assetproxy/internal/domain"
	"assetproxy/internal/pipeline"
)

type downloadRequest struct {
	AssetID      flexString `json:"assetId"`
	RobloxCookie string     `json:"robloxCookie"`
	PlaceID      flexString `json:"placeId"`
}

type batchRequest struct {
	AssetIDs     []flexString `json:"assetIds"`
	RobloxCookie string       `json:"robloxCookie"`
	PlaceID      flexString   `json:"placeId"`
}

type downloadResponse struct {
	Success bool `json:"success"`
	*domain.DownloadResult
}

func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	var body downloadRequest
	if err := decodeJSON(w, r, &body); err != nil {
		a.fail(w, r, err)
		return
	}
	result, err := a.Assets.Download(r.Context(), domain.AssetRequest{
		AssetID:    string(body.AssetID),
		Credential: body.RobloxCookie,
		PlaceID:    string(body.PlaceID),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, downloadResponse{Success: true, DownloadResult: result})
}

func (a *App) Info(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetId")
	credential := r.URL.Query().Get("robloxCookie")
	meta, err := a.Assets.Info(r.Context(), assetID, credential)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	canonical := meta.Type.Canonical()
	a.json(w, http.StatusOK, map[string]any{
		"success":     true,
		"assetId":     strings.TrimSpace(assetID),
		"assetType":   canonical,
		"displayType": canonical.DisplayName(),
		"assetName":   meta.Name,
		"creator":     meta.Creator,
		"placeholder": meta.Placeholder,
	})
}

func (a *App) BatchDownload(w http.ResponseWriter, r *http.Request) {
	var body batchRequest
	if err := decodeJSON(w, r, &body); err != nil {
		a.fail(w, r, err)
		return
	}
	ids := make([]string, len(body.AssetIDs))
	for i, id := range body.AssetIDs {
		ids[i] = string(id)
	}
	items, err := a.Assets.Batch(r.Context(), domain.BatchRequest{
		AssetIDs:   ids,
		Credential: body.RobloxCookie,
		PlaceID:    string(body.PlaceID),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	succeeded, failed := pipeline.Tally(items)
	a.json(w, http.StatusOK, map[string]any{
		"success":   true,
		"results":   items,
		"succeeded": succeeded,
		"failed":    failed,
	})
}
