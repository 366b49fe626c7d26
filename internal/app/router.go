package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/catalogd/catalogd/internal/auth"
	"github.com/catalogd/catalogd/internal/catalog/batch"
	"github.com/catalogd/catalogd/internal/catalog/history"
	"github.com/catalogd/catalogd/internal/catalog/products"
	"github.com/catalogd/catalogd/internal/catalog/stats"
	"github.com/catalogd/catalogd/internal/catalog/suppliers"
	"github.com/catalogd/catalogd/internal/observability"
	"github.com/catalogd/catalogd/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	TokenManager    *auth.TokenManager
	AuthHandler     *auth.Handler
	ProductHandler  *products.Handler
	BatchHandler    *batch.Handler
	SupplierHandler *suppliers.Handler
	HistoryHandler  *history.Handler
	StatsHandler    *stats.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router for the catalog API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Authenticator(params.TokenManager))

		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.Route("/products", func(r chi.Router) {
			params.BatchHandler.MountRoutes(r)
			params.SupplierHandler.MountProductRoutes(r)
			params.ProductHandler.MountRoutes(r)
		})
		r.Route("/suppliers", func(r chi.Router) {
			params.BatchHandler.MountSupplierRoutes(r)
			params.SupplierHandler.MountRoutes(r)
		})
		r.Route("/history", params.HistoryHandler.MountRoutes)
		r.Route("/admin", params.StatsHandler.MountRoutes)
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
