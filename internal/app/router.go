package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/craftline-erp/craftline/internal/assembly"
	"github.com/craftline-erp/craftline/internal/audit"
	"github.com/craftline-erp/craftline/internal/dispatch"
	"github.com/craftline-erp/craftline/internal/observability"
	"github.com/craftline-erp/craftline/internal/production"
	"github.com/craftline-erp/craftline/internal/purchase"
	"github.com/craftline-erp/craftline/internal/sales"
	"github.com/craftline-erp/craftline/internal/showroom"
	"github.com/craftline-erp/craftline/internal/store"
	"github.com/craftline-erp/craftline/internal/tracker"
	"github.com/craftline-erp/craftline/internal/transport"
	"github.com/craftline-erp/craftline/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	ProductionHandler *production.Handler
	PurchaseHandler   *purchase.Handler
	StoreHandler      *store.Handler
	AssemblyHandler   *assembly.Handler
	ShowroomHandler   *showroom.Handler
	SalesHandler      *sales.Handler
	TransportHandler  *transport.Handler
	DispatchHandler   *dispatch.Handler
	TrackerHandler    *tracker.Handler
	AuditHandler      *audit.Handler
	JobHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Craftline defaults.
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

	r.Route("/api", func(r chi.Router) {
		r.Route("/production", params.ProductionHandler.MountRoutes)
		r.Route("/purchase", params.PurchaseHandler.MountRoutes)
		r.Route("/store", params.StoreHandler.MountRoutes)
		r.Route("/assembly", params.AssemblyHandler.MountRoutes)
		r.Route("/showroom", params.ShowroomHandler.MountRoutes)
		r.Route("/sales", params.SalesHandler.MountRoutes)
		r.Route("/transport", params.TransportHandler.MountRoutes)
		r.Route("/dispatch", params.DispatchHandler.MountRoutes)
		r.Route("/tracker", params.TrackerHandler.MountRoutes)
		if params.AuditHandler != nil {
			r.Route("/audit", params.AuditHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
