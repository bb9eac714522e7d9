package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/benfund/benfund/internal/members"
	"github.com/benfund/benfund/internal/observability"
	"github.com/benfund/benfund/internal/payments"
	"github.com/benfund/benfund/internal/payouts"
	reportshttp "github.com/benfund/benfund/internal/reports/http"
	"github.com/benfund/benfund/internal/settings"
	"github.com/benfund/benfund/internal/transfers"
	"github.com/benfund/benfund/internal/units"
	"github.com/benfund/benfund/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	UnitsHandler    *units.Handler
	MembersHandler  *members.Handler
	TransferHandler *transfers.Handler
	PaymentHandler  *payments.Handler
	SettingsHandler *settings.Handler
	PayoutHandler   *payouts.Handler
	ReportsHandler  *reportshttp.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with BenFund defaults.
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

	if params.UnitsHandler != nil {
		r.Route("/units", params.UnitsHandler.MountRoutes)
	}
	if params.MembersHandler != nil {
		r.Route("/members", params.MembersHandler.MountRoutes)
	}
	if params.TransferHandler != nil {
		r.Route("/transfers", params.TransferHandler.MountRoutes)
	}
	if params.PaymentHandler != nil {
		r.Route("/payments", params.PaymentHandler.MountRoutes)
	}
	if params.SettingsHandler != nil {
		r.Route("/settings", params.SettingsHandler.MountRoutes)
	}
	if params.PayoutHandler != nil {
		r.Route("/payouts", params.PayoutHandler.MountRoutes)
	}
	if params.ReportsHandler != nil {
		r.Route("/reports", params.ReportsHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
