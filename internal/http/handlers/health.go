package handlers

import (
	"net/http"
	"time"
)

// availableEndpoints is echoed by the root banner and the 404 handler.
var availableEndpoints = []string{
	"GET /",
	"GET /api/health",
	"POST /api/download",
	"GET /api/info/{assetId}",
	"POST /api/batch-download",
	"GET /api/files",
	"GET /api/files/archive",
	"DELETE /api/files/{filename}",
	"GET /api/history",
	"GET /api/openapi.json",
	"GET /api/docs",
	"GET /downloads/{filename}",
	"GET /metrics",
}

func (a *App) Root(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Roblox Asset API is running!",
		"version": orDefault(a.Version, "dev"),
		"endpoints": map[string]string{
			"health":        "/api/health",
			"download":      "/api/download",
			"info":          "/api/info/{assetId}",
			"batchDownload": "/api/batch-download",
			"files":         "/api/files",
			"docs":          "/api/docs",
		},
		"usage": map[string]string{
			"health_check":   "GET /api/health",
			"download_asset": "POST /api/download with { assetId, robloxCookie?, placeId? }",
			"batch_download": "POST /api/batch-download with { assetIds, robloxCookie?, placeId? }",
		},
	})
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"success":   true,
		"status":    "online",
		"timestamp": a.now().UTC().Format(time.RFC3339Nano),
		"message":   "API is healthy and ready to process requests",
	})
}

func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusNotFound, map[string]any{
		"success":            false,
		"error":              "Endpoint not found",
		"path":               r.URL.RequestURI(),
		"availableEndpoints": availableEndpoints,
	})
}

func (a *App) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusMethodNotAllowed, "Method not allowed")
}
