package balances

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
	ledgershared "github.com/atlas-ops/atlas-erp/internal/ledger/shared"
	"github.com/atlas-ops/atlas-erp/internal/platform/httpx"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers the manual balance adjustment routes.
func (h *Handler) MountRoutes(r chi.Router, guard authz.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(authz.CapLedgerRead))
		r.Get("/ledger/balances", h.list)
		r.Get("/ledger/balances/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(authz.CapLedgerWrite))
		r.Post("/ledger/balances", h.create)
		r.Put("/ledger/balances/snapshot", h.replaceSnapshot)
		r.Put("/ledger/balances/{id}", h.update)
		r.Delete("/ledger/balances/{id}", h.delete)
	})
}

type itemForm struct {
	AccountID *int64 `json:"account_id" validate:"omitempty,gt=0"`
	Amount    string `json:"amount" validate:"required"`
	AsOfDate  string `json:"as_of_date" validate:"required,datetime=2006-01-02"`
	Note      string `json:"note" validate:"max=500"`
}

type listResponse struct {
	Records []Item `json:"records"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filters := ledgershared.ListFilters{
		Page:  page,
		Limit: limit,
		Month: r.URL.Query().Get("month"),
	}.Normalize()

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respondError(w, "list balance items", err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Records: items, Total: total, Page: filters.Page, Limit: filters.Limit})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get balance item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	item, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), item)
	if err != nil {
		h.respondError(w, "create balance item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	item, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), id, item); err != nil {
		h.respondError(w, "update balance item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete balance item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type snapshotForm struct {
	AsOfDate string `json:"as_of_date" validate:"required,datetime=2006-01-02"`
	Items    []struct {
		AccountID *int64 `json:"account_id" validate:"omitempty,gt=0"`
		Amount    string `json:"amount" validate:"required"`
		Note      string `json:"note" validate:"max=500"`
	} `json:"items" validate:"required,dive"`
}

// replaceSnapshot swaps the full adjustment set for one date in a single
// transaction. Used at month end when the whole sheet gets re-entered.
func (h *Handler) replaceSnapshot(w http.ResponseWriter, r *http.Request) {
	var form snapshotForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body is not valid JSON")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	asOf, _ := time.Parse("2006-01-02", form.AsOfDate)
	items := make([]Item, 0, len(form.Items))
	for _, entry := range form.Items {
		amount, err := decimal.NewFromString(entry.Amount)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount is not a valid decimal")
			return
		}
		items = append(items, Item{AccountID: entry.AccountID, Amount: amount, AsOfDate: asOf, Note: entry.Note})
	}
	saved, err := h.service.ReplaceForDate(r.Context(), asOf, items)
	if err != nil {
		h.respondError(w, "replace balance snapshot", err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Records: saved, Total: len(saved), Page: 1, Limit: len(saved)})
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (Item, bool) {
	var form itemForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body is not valid JSON")
		return Item{}, false
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return Item{}, false
	}
	amount, err := decimal.NewFromString(form.Amount)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount is not a valid decimal")
		return Item{}, false
	}
	asOf, _ := time.Parse("2006-01-02", form.AsOfDate)
	return Item{
		AccountID: form.AccountID,
		Amount:    amount,
		AsOfDate:  asOf,
		Note:      form.Note,
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "balance item not found")
	case errors.Is(err, ledgershared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ledgershared.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "an adjustment already exists for this account and date")
	default:
		if h.logger != nil {
			h.logger.Error(action, slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
