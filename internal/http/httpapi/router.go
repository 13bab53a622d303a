package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"assetproxy/internal/http/handlers"
	"assetproxy/internal/infra"
	"assetproxy/internal/middleware"
)

// Options carries the cross-cutting settings for the router.
type Options struct {
	Logger          infra.Logger
	CORSOrigins     []string
	RateLimitPerMin int
	Metrics         http.Handler
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.CORSOrigins),
	)

	r.NotFound(app.NotFound)
	r.MethodNotAllowed(app.MethodNotAllowed)

	r.Get("/", app.Root)
	r.Get("/downloads/{filename}", app.ServeFile)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
			r.Post("/download", app.Download)
			r.Get("/info/{assetId}", app.Info)
			r.Post("/batch-download", app.BatchDownload)
		})

		r.Route("/files", func(r chi.Router) {
			r.Get("/", app.ListFiles)
			r.Get("/archive", app.ArchiveFiles)
			r.Delete("/{filename}", app.DeleteFile)
		})
		r.Get("/history", app.ListHistory)
	})

	return r
}
