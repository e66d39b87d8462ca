package finance

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atlas-ops/atlas-erp/internal/shared"
)

// Service coordinates the ledger reads, classification configuration, and
// the report cache. It holds no mutable state of its own: every report is a
// fresh pure reduction of the fetched snapshot.
type Service struct {
	repo           Repository
	cache          *Cache
	classification ClassificationTable
	costs          CostTable
}

// NewService wires a Repository with the classification tables and an
// optional cache.
func NewService(repo Repository, cache *Cache, classification ClassificationTable, costs CostTable) *Service {
	return &Service{
		repo:           repo,
		cache:          cache,
		classification: classification,
		costs:          costs,
	}
}

// FetchPeriodData fans the eight ledger reads out concurrently and joins
// them into one snapshot. Any failed sub-fetch aborts the whole fetch with
// ErrDataUnavailable; a partial snapshot is never returned.
func (s *Service) FetchPeriodData(ctx context.Context, year int, month time.Month) (PeriodData, error) {
	yearStart, periodEnd := PeriodBounds(year, month)
	throughMonth := PeriodMonth(year, month)

	var data PeriodData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		data.ManualItems, err = s.repo.ManualItems(ctx, periodEnd)
		return wrapFetch("manual balance items", err)
	})
	g.Go(func() error {
		var err error
		data.Accounts, err = s.repo.ActiveAccounts(ctx)
		return wrapFetch("chart of accounts", err)
	})
	g.Go(func() error {
		var err error
		data.ReceivedIncome, err = s.repo.ReceivedIncome(ctx, yearStart, periodEnd)
		return wrapFetch("received income", err)
	})
	g.Go(func() error {
		var err error
		data.PaidExpenses, err = s.repo.PaidExpenses(ctx, yearStart, periodEnd)
		return wrapFetch("paid expenses", err)
	})
	g.Go(func() error {
		var err error
		data.PaidPayroll, err = s.repo.PaidPayroll(ctx, throughMonth)
		return wrapFetch("paid payroll", err)
	})
	g.Go(func() error {
		var err error
		data.PendingIncome, err = s.repo.PendingIncome(ctx, periodEnd)
		return wrapFetch("pending income", err)
	})
	g.Go(func() error {
		var err error
		data.PendingExpenses, err = s.repo.PendingExpenses(ctx, periodEnd)
		return wrapFetch("pending expenses", err)
	})
	g.Go(func() error {
		var err error
		data.PendingPayroll, err = s.repo.PendingPayroll(ctx, throughMonth)
		return wrapFetch("pending payroll", err)
	})

	if err := g.Wait(); err != nil {
		return PeriodData{}, err
	}
	return data, nil
}

// BalanceSheet returns the balance sheet as of the selected year and month,
// served from cache when a fresh entry exists.
func (s *Service) BalanceSheet(ctx context.Context, year int, month time.Month) (BalanceSheet, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		data, err := s.FetchPeriodData(ctx, year, month)
		if err != nil {
			return BalanceSheet{}, err
		}
		return BuildBalanceSheet(data, s.classification, year, month), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return BalanceSheet{}, err
		}
		return value.(BalanceSheet), nil
	}

	key, err := s.cache.BuildKey(ctx, keyBalanceSheet(year, month))
	if err != nil {
		return BalanceSheet{}, err
	}
	var sheet BalanceSheet
	if err := s.cache.FetchJSON(ctx, key, &sheet, loader); err != nil {
		return BalanceSheet{}, err
	}
	return sheet, nil
}

// MonthInsights derives the cost, payroll, margin, and runway figures for a
// single month. Revenue, expenses, and payroll are the month's own sums;
// the cash balance comes from the balance sheet as of the same month.
func (s *Service) MonthInsights(ctx context.Context, year int, month time.Month) (Insights, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		sheet, err := s.BalanceSheet(ctx, year, month)
		if err != nil {
			return Insights{}, err
		}
		totals, err := s.fetchMonthTotals(ctx, year, month)
		if err != nil {
			return Insights{}, err
		}
		insights := DeriveInsights(totals, sheet.CashAndBank)
		insights.Year = year
		insights.Month = month
		return insights, nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return Insights{}, err
		}
		return value.(Insights), nil
	}

	key, err := s.cache.BuildKey(ctx, keyInsights(year, month))
	if err != nil {
		return Insights{}, err
	}
	var insights Insights
	if err := s.cache.FetchJSON(ctx, key, &insights, loader); err != nil {
		return Insights{}, err
	}
	return insights, nil
}

// InvalidateReports bumps the cache version after a ledger write.
func (s *Service) InvalidateReports(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) fetchMonthTotals(ctx context.Context, year int, month time.Month) (MonthlyTotals, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	_, monthEnd := PeriodBounds(year, month)
	monthKey := PeriodMonth(year, month)

	var (
		income   []IncomeRecord
		expenses []ExpenseRecord
		payroll  []PayrollRecord
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		income, err = s.repo.ReceivedIncome(ctx, monthStart, monthEnd)
		return wrapFetch("month income", err)
	})
	g.Go(func() error {
		var err error
		expenses, err = s.repo.PaidExpenses(ctx, monthStart, monthEnd)
		return wrapFetch("month expenses", err)
	})
	g.Go(func() error {
		var err error
		payroll, err = s.repo.PaidPayrollForMonth(ctx, monthKey)
		return wrapFetch("month payroll", err)
	})
	if err := g.Wait(); err != nil {
		return MonthlyTotals{}, err
	}

	return MonthlyTotals{
		Revenue:  sumIncome(income),
		Expenses: sumExpenses(expenses),
		HPP:      s.costs.SumHPP(expenses),
		Payroll:  sumPayroll(payroll),
	}, nil
}

func wrapFetch(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrDataUnavailable, name, err)
}
