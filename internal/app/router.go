package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meridian-pos/meridian-pos/internal/closing"
	"github.com/meridian-pos/meridian-pos/internal/products"
	"github.com/meridian-pos/meridian-pos/internal/shops"
	"github.com/meridian-pos/meridian-pos/internal/trade"
	"github.com/meridian-pos/meridian-pos/internal/trends"
	"github.com/meridian-pos/meridian-pos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	ProductsHandler *products.Handler
	ShopsHandler    *shops.Handler
	TradeHandler    *trade.Handler
	TrendsHandler   *trends.Handler
	ClosingHandler  *closing.Handler
	JobHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		if params.ProductsHandler != nil {
			r.Route("/products", params.ProductsHandler.MountRoutes)
		}
		if params.ShopsHandler != nil {
			r.Route("/shops", params.ShopsHandler.MountRoutes)
		}
		if params.TradeHandler != nil {
			r.Route("/trade", params.TradeHandler.MountRoutes)
		}
		if params.TrendsHandler != nil {
			r.Route("/trends", params.TrendsHandler.MountRoutes)
		}
		if params.ClosingHandler != nil {
			r.Route("/closing", params.ClosingHandler.MountRoutes)
		}
	})
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
