package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/smart-inventory/smart-inventory/internal/inventory"
	"github.com/smart-inventory/smart-inventory/internal/mailer"
	"github.com/smart-inventory/smart-inventory/internal/observability"
	"github.com/smart-inventory/smart-inventory/internal/platform/httpx"
	"github.com/smart-inventory/smart-inventory/internal/reports"
	"github.com/smart-inventory/smart-inventory/internal/suppliers"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	InventoryHandler *inventory.Handler
	SupplierHandler  *suppliers.Handler
	MailHandler      *mailer.Handler
	ReportsHandler   *reports.Handler
	Metrics          *observability.Metrics
	// Health reports store reachability; nil means always healthy.
	Health func(context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewRouter constructs the chi.Router with service defaults.
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
		if params.Health != nil {
			if err := params.Health(r.Context()); err != nil {
				if params.Logger != nil {
					params.Logger.Warn("health check failed", slog.Any("error", err))
				}
				httpx.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
	})

	if params.InventoryHandler != nil {
		r.Route("/api/products", params.InventoryHandler.MountRoutes)
	}
	if params.SupplierHandler != nil {
		r.Route("/supplier", params.SupplierHandler.MountRoutes)
	}
	if params.MailHandler != nil {
		r.Route("/email", params.MailHandler.MountRoutes)
	}
	if params.ReportsHandler != nil {
		r.Route("/api/reports", params.ReportsHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, http.StatusText(http.StatusNotFound), "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusMethodNotAllowed, httpx.ProblemDetail{
			Title:  http.StatusText(http.StatusMethodNotAllowed),
			Status: http.StatusMethodNotAllowed,
			Code:   httpx.CodeValidation,
		})
	})

	return r
}
