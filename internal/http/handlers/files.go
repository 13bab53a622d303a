package handlers

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"assetproxy/internal/domain"
	"assetproxy/pkg/zip"
)

type fileEntry struct {
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
	URL        string    `json:"url"`
}

func (a *App) ListFiles(w http.ResponseWriter, r *http.Request) {
	blobs, err := a.Store.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	files := make([]fileEntry, 0, len(blobs))
	for _, b := range blobs {
		files = append(files, fileEntry{
			Filename:   b.Key,
			Size:       b.Size,
			ModifiedAt: b.ModifiedAt,
			URL:        a.downloadURL(b.Key),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "count": len(files), "files": files})
}

func (a *App) DeleteFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if err := a.Store.Delete(r.Context(), filename); err != nil {
		a.fail(w, r, fileError(err))
		return
	}
	a.logger().Info().Str("filename", filename).Msg("file deleted")
	a.json(w, http.StatusOK, map[string]any{
		"success":  true,
		"filename": filename,
		"message":  "File deleted",
	})
}

// ServeFile streams a persisted payload as an attachment.
func (a *App) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	rc, err := a.Store.Open(r.Context(), filename)
	if err != nil {
		a.fail(w, r, fileError(err))
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", contentTypeFor(filename))
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(filename)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		a.logger().Warn().Err(err).Str("filename", filename).Msg("stream file")
	}
}

// ArchiveFiles streams every persisted payload as one zip.
func (a *App) ArchiveFiles(w http.ResponseWriter, r *http.Request) {
	blobs, err := a.Store.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if len(blobs) == 0 {
		a.error(w, http.StatusNotFound, "No files stored")
		return
	}
	entries := make([]zip.Entry, len(blobs))
	for i, b := range blobs {
		entries[i] = zip.Entry{Name: b.Key, Modified: b.ModifiedAt}
	}
	name := "assets_" + strconv.FormatInt(a.now().Unix(), 10) + ".zip"
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if err := zip.Write(r.Context(), w, entries, a.Store.Open); err != nil {
		a.logger().Error().Err(err).Int("files", len(entries)).Msg("write archive")
	}
}

func fileError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Errorf(domain.ErrNotFound, "File not found")
	}
	if errors.Is(err, domain.ErrValidation) {
		return domain.Errorf(domain.ErrValidation, "Invalid filename")
	}
	return err
}

func contentTypeFor(filename string) string {
	switch path.Ext(filename) {
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
