package income

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

// MountRoutes registers income routes.
func (h *Handler) MountRoutes(r chi.Router, guard authz.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(authz.CapLedgerRead))
		r.Get("/ledger/incomes", h.list)
		r.Get("/ledger/incomes/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(authz.CapLedgerWrite))
		r.Post("/ledger/incomes", h.create)
		r.Put("/ledger/incomes/{id}", h.update)
		r.Post("/ledger/incomes/{id}/receive", h.markReceived)
		r.Delete("/ledger/incomes/{id}", h.delete)
	})
}

type incomeForm struct {
	ClientID    *int64 `json:"client_id" validate:"omitempty,gt=0"`
	ProjectID   *int64 `json:"project_id" validate:"omitempty,gt=0"`
	Amount      string `json:"amount" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Status      string `json:"status" validate:"omitempty,oneof=pending received"`
	Description string `json:"description" validate:"max=500"`
}

type listResponse struct {
	Records []Income `json:"records"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := parseFilters(r)
	records, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respondError(w, "list incomes", err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Records: records, Total: total, Page: filters.Page, Limit: filters.Limit})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get income", err)
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
		h.respondError(w, "create income", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	rec, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), id, rec); err != nil {
		h.respondError(w, "update income", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) markReceived(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.MarkReceived(r.Context(), id); err != nil {
		h.respondError(w, "mark income received", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": string(finance.IncomeStatusReceived)})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete income", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (Income, bool) {
	var form incomeForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body is not valid JSON")
		return Income{}, false
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return Income{}, false
	}
	amount, err := decimal.NewFromString(form.Amount)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount is not a valid decimal")
		return Income{}, false
	}
	date, _ := time.Parse("2006-01-02", form.Date)
	return Income{
		ClientID:    form.ClientID,
		ProjectID:   form.ProjectID,
		Amount:      amount,
		Date:        date,
		Status:      finance.IncomeStatus(form.Status),
		Description: form.Description,
	}, true
}

func (h *Handler) respondError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ledgershared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "income record not found")
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

func parseFilters(r *http.Request) ledgershared.ListFilters {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return ledgershared.ListFilters{
		Page:   page,
		Limit:  limit,
		Status: r.URL.Query().Get("status"),
		Month:  r.URL.Query().Get("month"),
	}.Normalize()
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return 0, false
	}
	return id, true
}
