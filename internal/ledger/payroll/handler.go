package payroll

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/atlas-ops/atlas-erp/internal/authz"
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

// MountRoutes registers payroll routes. Payroll reads and writes are guarded
// separately from the general ledger.
func (h *Handler) MountRoutes(r chi.Router, guard authz.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(authz.CapPayrollRead))
		r.Get("/ledger/payrolls", h.list)
		r.Get("/ledger/payrolls/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(authz.CapPayrollWrite))
		r.Post("/ledger/payrolls", h.create)
		r.Put("/ledger/payrolls/{id}", h.updateAmount)
		r.Post("/ledger/payrolls/{id}/finalize", h.finalize)
		r.Post("/ledger/payrolls/{id}/pay", h.markPaid)
		r.Delete("/ledger/payrolls/{id}", h.delete)
	})
}

type runForm struct {
	EmployeeID int64  `json:"employee_id" validate:"required,gt=0"`
	Amount     string `json:"amount" validate:"required"`
	Month      string `json:"month" validate:"required,len=7"`
}

type amountForm struct {
	Amount string `json:"amount" validate:"required"`
}

type listResponse struct {
	Records []Run `json:"records"`
	Total   int   `json:"total"`
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filters := ledgershared.ListFilters{
		Page:   page,
		Limit:  limit,
		Status: r.URL.Query().Get("status"),
		Month:  r.URL.Query().Get("month"),
	}.Normalize()

	runs, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respondError(w, "list payrolls", err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Records: runs, Total: total, Page: filters.Page, Limit: filters.Limit})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	run, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get payroll", err)
		return
	}
	httpx.JSON(w, http.StatusOK, run)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form runForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body is not valid JSON")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	amount, err := decimal.NewFromString(form.Amount)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount is not a valid decimal")
		return
	}
	created, err := h.service.Create(r.Context(), Run{
		EmployeeID: form.EmployeeID,
		Amount:     amount,
		Month:      form.Month,
	})
	if err != nil {
		h.respondError(w, "create payroll", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateAmount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var form amountForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body is not valid JSON")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	amount, err := decimal.NewFromString(form.Amount)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount is not a valid decimal")
		return
	}
	if err := h.service.UpdateAmount(r.Context(), id, Run{Amount: amount}); err != nil {
		h.respondError(w, "update payroll", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) finalize(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Finalize(r.Context(), id); err != nil {
		h.respondError(w, "finalize payroll", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "final"})
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.MarkPaid(r.Context(), id); err != nil {
		h.respondError(w, "pay payroll", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "paid"})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete payroll", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "payroll run not found")
	case errors.Is(err, ledgershared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ledgershared.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "a run already exists for this employee and month")
	case errors.Is(err, shared.ErrInvalidStatusTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
	default:
		if h.logger != nil {
			h.logger.Error(action, slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
