package coa

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

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

// MountRoutes registers chart of accounts routes.
func (h *Handler) MountRoutes(r chi.Router, guard authz.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(authz.CapLedgerRead))
		r.Get("/coa/accounts", h.list)
		r.Get("/coa/accounts/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(authz.CapCoaManage))
		r.Post("/coa/accounts", h.create)
		r.Put("/coa/accounts/{id}", h.update)
		r.Post("/coa/accounts/{id}/deactivate", h.deactivate)
		r.Post("/coa/accounts/{id}/activate", h.activate)
	})
}

type accountForm struct {
	Code string `json:"code" validate:"required,len=4,numeric"`
	Name string `json:"name" validate:"required,max=120"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	accounts, err := h.service.List(r.Context(), includeInactive)
	if err != nil {
		h.respondError(w, "list accounts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": accounts})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	acc, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	acc, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), acc)
	if err != nil {
		h.respondError(w, "create account", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	acc, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), id, acc); err != nil {
		h.respondError(w, "update account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		h.respondError(w, "deactivate account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "inactive"})
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Activate(r.Context(), id); err != nil {
		h.respondError(w, "activate account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "active"})
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (Account, bool) {
	var form accountForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body is not valid JSON")
		return Account{}, false
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return Account{}, false
	}
	return Account{Code: form.Code, Name: form.Name}, true
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
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "account not found")
	case errors.Is(err, ledgershared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ledgershared.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "an account with this code already exists")
	default:
		if h.logger != nil {
			h.logger.Error(action, slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
