package financehttp

import (
	"github.com/go-chi/chi/v5"

	"github.com/atlas-ops/atlas-erp/internal/authz"
)

// MountRoutes registers the finance report endpoints.
func (h *Handler) MountRoutes(r chi.Router, guard authz.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(authz.CapFinanceRead))
		r.Get("/finance/balance-sheet", h.balanceSheet)
		r.Get("/finance/insights", h.insights)
	})
}
