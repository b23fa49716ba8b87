package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/fiscalyears"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/statements"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/trialbalance"
	"github.com/odyssey-erp/odyssey-books/internal/integration"
	"github.com/odyssey-erp/odyssey-books/internal/observability"
	"github.com/odyssey-erp/odyssey-books/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AccountsHandler     *accounts.Handler
	FiscalYearsHandler  *fiscalyears.Handler
	JournalsHandler     *journals.Handler
	TrialBalanceHandler *trialbalance.Handler
	StatementsHandler   *statements.Handler
	IntegrationHandler  *integration.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewHandlers builds the HTTP handlers for the ledger services.
func NewHandlers(logger *slog.Logger, services *Services) RouterParams {
	return RouterParams{
		Logger:              logger,
		AccountsHandler:     accounts.NewHandler(logger, services.Accounts),
		FiscalYearsHandler:  fiscalyears.NewHandler(logger, services.FiscalYears),
		JournalsHandler:     journals.NewHandler(logger, services.Journals),
		TrialBalanceHandler: trialbalance.NewHandler(logger, services.TrialBalance),
		StatementsHandler:   statements.NewHandler(logger, services.Statements),
		IntegrationHandler:  integration.NewHandler(logger, services.Hooks),
	}
}

// NewRouter constructs the chi.Router with Odyssey defaults.
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

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(TenantMiddleware)
		if params.AccountsHandler != nil {
			r.Route("/accounts", params.AccountsHandler.MountRoutes)
		}
		if params.FiscalYearsHandler != nil {
			r.Route("/fiscal-years", params.FiscalYearsHandler.MountRoutes)
		}
		if params.JournalsHandler != nil {
			r.Route("/journals", params.JournalsHandler.MountRoutes)
		}
		if params.TrialBalanceHandler != nil {
			r.Route("/trial-balance", params.TrialBalanceHandler.MountRoutes)
		}
		if params.StatementsHandler != nil {
			r.Route("/statements", params.StatementsHandler.MountRoutes)
		}
		if params.IntegrationHandler != nil {
			r.Route("/integration", params.IntegrationHandler.MountRoutes)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
