package finance

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRatiosZeroRevenue(t *testing.T) {
	if got := CostRatio(d(1_000_000), decimal.Zero); !got.IsZero() {
		t.Fatalf("cost ratio with zero revenue must be 0, got %s", got)
	}
	if got := PayrollRatio(d(1_000_000), decimal.Zero); !got.IsZero() {
		t.Fatalf("payroll ratio with zero revenue must be 0, got %s", got)
	}
	if got := OperatingMargin(decimal.Zero, d(500), d(500)); !got.IsZero() {
		t.Fatalf("operating margin with zero revenue must be 0, got %s", got)
	}
}

func TestRatioValues(t *testing.T) {
	if got := CostRatio(d(4_000_000), d(10_000_000)); !got.Equal(d(40)) {
		t.Fatalf("expected cost ratio 40 got %s", got)
	}
	if got := PayrollRatio(d(2_500_000), d(10_000_000)); !got.Equal(d(25)) {
		t.Fatalf("expected payroll ratio 25 got %s", got)
	}
	if got := OperatingMargin(d(10_000_000), d(4_000_000), d(2_500_000)); !got.Equal(d(35)) {
		t.Fatalf("expected operating margin 35 got %s", got)
	}
}

func TestCashRunwayMonths(t *testing.T) {
	months, ok := CashRunwayMonths(d(30_000_000), d(10_000_000))
	if !ok {
		t.Fatal("positive burn must yield a known runway")
	}
	if !months.Equal(d(3)) {
		t.Fatalf("expected runway 3 months got %s", months)
	}
}

func TestCashRunwaySentinel(t *testing.T) {
	if _, ok := CashRunwayMonths(d(30_000_000), decimal.Zero); ok {
		t.Fatal("zero burn must report the indefinite sentinel")
	}
	if _, ok := CashRunwayMonths(d(30_000_000), d(-5)); ok {
		t.Fatal("negative burn must report the indefinite sentinel")
	}
}

func TestDeriveInsights(t *testing.T) {
	totals := MonthlyTotals{
		Revenue:  d(10_000_000),
		Expenses: d(4_000_000),
		HPP:      d(3_000_000),
		Payroll:  d(2_000_000),
	}

	in := DeriveInsights(totals, d(30_000_000))

	if !in.CostRatio.Equal(d(30)) {
		t.Fatalf("expected cost ratio 30 got %s", in.CostRatio)
	}
	if !in.PayrollRatio.Equal(d(20)) {
		t.Fatalf("expected payroll ratio 20 got %s", in.PayrollRatio)
	}
	if !in.OperatingMargin.Equal(d(40)) {
		t.Fatalf("expected operating margin 40 got %s", in.OperatingMargin)
	}
	if !in.RunwayKnown {
		t.Fatal("expected known runway")
	}
	if !in.RunwayMonths.Equal(d(5)) {
		t.Fatalf("expected runway 5 months got %s", in.RunwayMonths)
	}
}

func TestDeriveInsightsQuietMonth(t *testing.T) {
	in := DeriveInsights(MonthlyTotals{}, d(12_000_000))

	if !in.CostRatio.IsZero() || !in.PayrollRatio.IsZero() || !in.OperatingMargin.IsZero() {
		t.Fatalf("quiet month must not divide, got %+v", in)
	}
	if in.RunwayKnown {
		t.Fatal("no burn means indefinite runway")
	}
}
