package expense

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/atlas-ops/atlas-erp/internal/authz"
	"github.com/atlas-ops/atlas-erp/internal/finance"
	ledgershared "github.com/atlas-ops/atlas-erp/internal/ledger/shared"
	"github.com/atlas-ops/atlas-erp/internal/platform/httpx"
	"github.com/atlas-ops/atlas-erp/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers expense routes.
func (h *Handler) MountRoutes(r chi.Router, guard authz.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(authz.CapLedgerRead))
		r.Get("/ledger/expenses", h.list)
		r.Get("/ledger/expenses/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(authz.CapLedgerWrite))
		r.Post("/ledger/expenses", h.create)
		r.Put("/ledger/expenses/{id}", h.update)
		r.Post("/ledger/expenses/{id}/pay", h.markPaid)
		r.Delete("/ledger/expenses/{id}", h.delete)
	})
}

type expenseForm struct {
	ProjectID   *int64 `json:"project_id" validate:"omitempty,gt=0"`
	Amount      string `json:"amount" validate:"required"`
	Category    string `json:"category" validate:"required,max=100"`
	SubCategory string `json:"sub_category" validate:"max=100"`
	Status      string `json:"status" validate:"omitempty,oneof=pending paid"`
	Description string `json:"description" validate:"max=500"`
}

type payForm struct {
	PaidAt string `json:"paid_at" validate:"omitempty,datetime=2006-01-02"`
}

type listResponse struct {
	Records []Expense `json:"records"`
	Total   int       `json:"total"`
	Page    int       `json:"page"`
	Limit   int       `json:"limit"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filters := ledgershared.ListFilters{
		Page:   page,
		Limit:  limit,
		Status: r.URL.Query().Get("status"),
		Month:  r.URL.Query().Get("month"),
		Search: r.URL.Query().Get("search"),
	}.Normalize()

	records, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respondError(w, "list expenses", err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Records: records, Total: total, Page: filters.Page, Limit: filters.Limit})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get expense", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), rec)
	if err != nil {
		h.respondError(w, "create expense", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	rec, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), id, rec); err != nil {
		h.respondError(w, "update expense", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var form payForm
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &form); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body is not valid JSON")
			return
		}
		if err := h.validator.Struct(form); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
	}
	var paidAt time.Time
	if form.PaidAt != "" {
		paidAt, _ = time.Parse("2006-01-02", form.PaidAt)
	}
	if err := h.service.MarkPaid(r.Context(), id, paidAt); err != nil {
		h.respondError(w, "mark expense paid", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": string(finance.ExpenseStatusPaid)})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete expense", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (Expense, bool) {
	var form expenseForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body is not valid JSON")
		return Expense{}, false
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return Expense{}, false
	}
	amount, err := decimal.NewFromString(form.Amount)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount is not a valid decimal")
		return Expense{}, false
	}
	return Expense{
		ProjectID:   form.ProjectID,
		Amount:      amount,
		Category:    form.Category,
		SubCategory: form.SubCategory,
		Status:      finance.ExpenseStatus(form.Status),
		Description: form.Description,
	}, true
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ledgershared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "expense record not found")
	case errors.Is(err, ledgershared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ledgershared.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrInvalidStatusTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
	default:
		if h.logger != nil {
			h.logger.Error(action, slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
