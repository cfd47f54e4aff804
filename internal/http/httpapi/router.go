// Package httpapi assembles the chi router for the API process.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/http/handlers"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/infra"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/infra/geoip"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/middleware"
)

// NewRouter wires middlewares and versioned routes. Only the submission
// endpoint is rate limited; status reads and the provider callback are not.
func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger, countries geoip.CountryResolver) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(logger, countries),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/jobs", func(r chi.Router) {
		r.With(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)).Post("/", app.CreateJob)
		r.Get("/{job_id}", app.GetJob)
		r.Get("/{job_id}/assets", app.ListJobAssets)
	})

	r.Post("/v1/callbacks/image-generation", app.ImageGenerationCallback)

	// Locally stored assets are served straight from disk; behind a real
	// CDN this block goes unused.
	if cfg.StoragePath != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StoragePath)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
