package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"assetproxy/internal/domain"
	"assetproxy/internal/infra"
)

const maxRequestBody = 1 << 20

// AssetService is the pipeline surface the handlers drive.
type AssetService interface {
	Download(ctx context.Context, req domain.AssetRequest) (*domain.DownloadResult, error)
	Info(ctx context.Context, assetID, credential string) (*domain.AssetMetadata, error)
	Batch(ctx context.Context, req domain.BatchRequest) ([]domain.BatchItem, error)
}

type App struct {
	Assets  AssetService
	Store   domain.BlobStore
	History domain.DownloadRepository
	Logger  *infra.Logger
	BaseURL string
	Version string
	Now     func() time.Time
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]any{"success": false, "error": msg})
}

// fail maps pipeline and store errors onto status codes. Messages of
// domain.Error values are client-safe; anything else is logged and hidden.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var derr *domain.Error
	msg := ""
	if errors.As(err, &derr) {
		msg = derr.Message
	}
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnsupportedType):
		a.error(w, http.StatusBadRequest, orDefault(msg, "Invalid request"))
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, orDefault(msg, "Not found"))
	case errors.Is(err, domain.ErrHistoryDisabled):
		a.error(w, http.StatusNotFound, "History disabled")
	case errors.Is(err, domain.ErrPersistence) && msg != "":
		a.error(w, http.StatusInternalServerError, msg)
	default:
		a.logger().Error().Err(err).
			Str("request_id", infra.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("unhandled error")
		a.error(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (a *App) logger() *infra.Logger { return infra.OrDiscard(a.Logger) }

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) downloadURL(key string) string {
	return strings.TrimRight(a.BaseURL, "/") + "/downloads/" + url.PathEscape(key)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return domain.Errorf(domain.ErrValidation, "Invalid JSON body")
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// flexString accepts a JSON string or number, so {"assetId": 123} and
// {"assetId": "123"} decode the same way.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}
