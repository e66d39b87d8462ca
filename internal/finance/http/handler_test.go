package financehttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-ops/atlas-erp/internal/finance"
	"github.com/atlas-ops/atlas-erp/internal/shared"
)

type mockReportService struct {
	sheet    finance.BalanceSheet
	insights finance.Insights
	err      error

	lastYear  int
	lastMonth time.Month
}

func (m *mockReportService) BalanceSheet(ctx context.Context, year int, month time.Month) (finance.BalanceSheet, error) {
	m.lastYear, m.lastMonth = year, month
	if m.err != nil {
		return finance.BalanceSheet{}, m.err
	}
	return m.sheet, nil
}

func (m *mockReportService) MonthInsights(ctx context.Context, year int, month time.Month) (finance.Insights, error) {
	m.lastYear, m.lastMonth = year, month
	if m.err != nil {
		return finance.Insights{}, m.err
	}
	return m.insights, nil
}

func newTestHandler(svc ReportService) *Handler {
	h := NewHandler(nil, svc)
	h.now = func() time.Time { return time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC) }
	return h
}

func TestBalanceSheetReport(t *testing.T) {
	svc := &mockReportService{sheet: finance.BalanceSheet{
		Year:        2026,
		Month:       time.January,
		CashAndBank: decimal.NewFromInt(25_000_000),
		TotalAssets: decimal.NewFromInt(25_000_000),
		Balanced:    true,
	}}
	h := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/finance/balance-sheet?year=2026&month=1", nil)
	rr := httptest.NewRecorder()
	h.balanceSheet(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2026, svc.lastYear)
	assert.Equal(t, time.January, svc.lastMonth)

	var body BalanceSheetResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "2026-01", body.Period)
	assert.True(t, body.CashAndBank.Amount.Equal(decimal.NewFromInt(25_000_000)))
	assert.Equal(t, finance.FormatIDR(decimal.NewFromInt(25_000_000)), body.CashAndBank.Display)
	assert.True(t, body.Balanced)
}

func TestBalanceSheetDefaultsToCurrentMonth(t *testing.T) {
	svc := &mockReportService{}
	h := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/finance/balance-sheet", nil)
	rr := httptest.NewRecorder()
	h.balanceSheet(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2026, svc.lastYear)
	assert.Equal(t, time.March, svc.lastMonth)
}

func TestBalanceSheetRejectsBadPeriod(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"month too large", "?month=13"},
		{"month zero", "?month=0"},
		{"month not numeric", "?month=march"},
		{"year too small", "?year=1999"},
		{"year not numeric", "?year=20x6"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(&mockReportService{})
			req := httptest.NewRequest(http.MethodGet, "/finance/balance-sheet"+tc.query, nil)
			rr := httptest.NewRecorder()
			h.balanceSheet(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestBalanceSheetUnavailableLedger(t *testing.T) {
	h := newTestHandler(&mockReportService{err: shared.ErrDataUnavailable})

	req := httptest.NewRequest(http.MethodGet, "/finance/balance-sheet", nil)
	rr := httptest.NewRecorder()
	h.balanceSheet(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestInsightsReport(t *testing.T) {
	svc := &mockReportService{insights: finance.Insights{
		Year:  2026,
		Month: time.February,
		Totals: finance.MonthlyTotals{
			Revenue:  decimal.NewFromInt(10_000_000),
			Expenses: decimal.NewFromInt(6_000_000),
			Payroll:  decimal.NewFromInt(3_000_000),
		},
		CashBalance:     decimal.NewFromInt(12_000_000),
		CostRatio:       decimal.NewFromInt(60),
		PayrollRatio:    decimal.NewFromInt(30),
		OperatingMargin: decimal.NewFromInt(40),
		RunwayMonths:    decimal.NewFromInt(2),
		RunwayKnown:     true,
	}}
	h := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/finance/insights?year=2026&month=2", nil)
	rr := httptest.NewRecorder()
	h.insights(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body InsightsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "2026-02", body.Period)
	assert.Equal(t, finance.FormatPercent(decimal.NewFromInt(60)), body.CostRatio)
	assert.Equal(t, finance.FormatMonths(decimal.NewFromInt(2)), body.RunwayMonths)
}

func TestInsightsRunwayUnknown(t *testing.T) {
	h := newTestHandler(&mockReportService{insights: finance.Insights{
		Year:  2026,
		Month: time.March,
	}})

	req := httptest.NewRequest(http.MethodGet, "/finance/insights", nil)
	rr := httptest.NewRecorder()
	h.insights(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body InsightsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "n/a", body.RunwayMonths)
}
