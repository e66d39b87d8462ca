package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/atlas-ops/atlas-erp/internal/authz"
	"github.com/atlas-ops/atlas-erp/internal/coa"
	financehttp "github.com/atlas-ops/atlas-erp/internal/finance/http"
	"github.com/atlas-ops/atlas-erp/internal/ledger/balances"
	"github.com/atlas-ops/atlas-erp/internal/ledger/expense"
	"github.com/atlas-ops/atlas-erp/internal/ledger/income"
	"github.com/atlas-ops/atlas-erp/internal/ledger/payroll"
	"github.com/atlas-ops/atlas-erp/internal/observability"
	"github.com/atlas-ops/atlas-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config
	Guard  authz.Middleware

	FinanceHandler *financehttp.Handler
	IncomeHandler  *income.Handler
	ExpenseHandler *expense.Handler
	PayrollHandler *payroll.Handler
	BalanceHandler *balances.Handler
	CoaHandler     *coa.Handler

	JobHandler *jobs.Handler
	Metrics    *observability.Metrics
}

// NewRouter constructs the chi.Router with Atlas defaults.
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

	if params.FinanceHandler != nil {
		params.FinanceHandler.MountRoutes(r, params.Guard)
	}
	if params.IncomeHandler != nil {
		params.IncomeHandler.MountRoutes(r, params.Guard)
	}
	if params.ExpenseHandler != nil {
		params.ExpenseHandler.MountRoutes(r, params.Guard)
	}
	if params.PayrollHandler != nil {
		params.PayrollHandler.MountRoutes(r, params.Guard)
	}
	if params.BalanceHandler != nil {
		params.BalanceHandler.MountRoutes(r, params.Guard)
	}
	if params.CoaHandler != nil {
		params.CoaHandler.MountRoutes(r, params.Guard)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
