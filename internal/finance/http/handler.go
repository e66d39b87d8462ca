package financehttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/atlas-ops/atlas-erp/internal/finance"
	"github.com/atlas-ops/atlas-erp/internal/platform/httpx"
	"github.com/atlas-ops/atlas-erp/internal/shared"
)

// ReportService defines the report data contract used by the handler.
type ReportService interface {
	BalanceSheet(ctx context.Context, year int, month time.Month) (finance.BalanceSheet, error)
	MonthInsights(ctx context.Context, year int, month time.Month) (finance.Insights, error)
}

// Handler serves the finance report endpoints.
type Handler struct {
	logger  *slog.Logger
	service ReportService
	now     func() time.Time
}

// NewHandler constructs the finance HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	return &Handler{logger: logger, service: service, now: time.Now}
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	year, month, err := h.parsePeriod(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	sheet, err := h.service.BalanceSheet(r.Context(), year, month)
	if err != nil {
		h.respondError(w, r, "balance sheet", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toBalanceSheetResponse(sheet))
}

func (h *Handler) insights(w http.ResponseWriter, r *http.Request) {
	year, month, err := h.parsePeriod(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	in, err := h.service.MonthInsights(r.Context(), year, month)
	if err != nil {
		h.respondError(w, r, "insights", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toInsightsResponse(in))
}

// parsePeriod reads year/month query parameters, defaulting to the current
// month when absent.
func (h *Handler) parsePeriod(r *http.Request) (int, time.Month, error) {
	now := h.now()
	year, month := now.Year(), now.Month()

	if raw := r.URL.Query().Get("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 2000 || v > 2999 {
			return 0, 0, errors.New("year must be a four digit year")
		}
		year = v
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 12 {
			return 0, 0, errors.New("month must be between 1 and 12")
		}
		month = time.Month(v)
	}
	return year, month, nil
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, report string, err error) {
	if h.logger != nil {
		h.logger.Error("render report",
			slog.String("report", report),
			slog.Any("error", err))
	}
	if errors.Is(err, shared.ErrDataUnavailable) {
		httpx.Problem(w, http.StatusServiceUnavailable, "Report Unavailable",
			"failed to load ledger data, retry or change the period")
		return
	}
	httpx.RespondError(w, err)
}
