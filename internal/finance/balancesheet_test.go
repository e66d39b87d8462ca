package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func intPtr(v int64) *int64 { return &v }

func agencyAccounts() []ChartOfAccount {
	return []ChartOfAccount{
		{ID: 1, Code: "1110", Name: "Kas & Bank", IsActive: true},
		{ID: 2, Code: "1130", Name: "Piutang Karyawan", IsActive: true},
		{ID: 3, Code: "1140", Name: "Biaya Dibayar Dimuka", IsActive: true},
		{ID: 4, Code: "1210", Name: "Peralatan Kantor", IsActive: true},
		{ID: 5, Code: "1220", Name: "Kendaraan", IsActive: true},
		{ID: 6, Code: "1230", Name: "Akumulasi Penyusutan", IsActive: true},
		{ID: 7, Code: "2130", Name: "Hutang Pajak", IsActive: true},
		{ID: 8, Code: "2140", Name: "Hutang BPJS", IsActive: true},
		{ID: 9, Code: "2200", Name: "Hutang Jangka Panjang", IsActive: true},
		{ID: 10, Code: "3100", Name: "Modal Disetor", IsActive: true},
		{ID: 11, Code: "3200", Name: "Laba Ditahan", IsActive: true},
	}
}

func TestBuildBalanceSheetEmptyInputs(t *testing.T) {
	sheet := BuildBalanceSheet(PeriodData{}, DefaultClassificationTable(), 2025, time.June)

	if !sheet.TotalAssets.IsZero() {
		t.Fatalf("expected zero assets, got %s", sheet.TotalAssets)
	}
	if !sheet.TotalLiabilitiesAndEquity.IsZero() {
		t.Fatalf("expected zero liabilities and equity, got %s", sheet.TotalLiabilitiesAndEquity)
	}
	if !sheet.CurrentYearProfit.IsZero() {
		t.Fatalf("expected zero profit, got %s", sheet.CurrentYearProfit)
	}
	if !sheet.Balanced {
		t.Fatal("empty sheet must be balanced")
	}
}

func TestBuildBalanceSheetScenario(t *testing.T) {
	data := PeriodData{
		Accounts: agencyAccounts(),
		ManualItems: []ManualBalanceItem{
			{AccountID: intPtr(1), Amount: d(10_000_000)},
			{AccountID: intPtr(4), Amount: d(5_000_000)},
			{AccountID: intPtr(6), Amount: d(1_000_000)},
			{AccountID: intPtr(7), Amount: d(500_000)},
			{AccountID: intPtr(10), Amount: d(10_000_000)},
		},
		PendingIncome: []IncomeRecord{
			{Amount: d(2_000_000), Status: IncomeStatusPending},
		},
		PendingExpenses: []ExpenseRecord{
			{Amount: d(3_000_000), Status: ExpenseStatusPending},
		},
		ReceivedIncome: []IncomeRecord{
			{Amount: d(2_500_000), Status: IncomeStatusReceived},
		},
	}

	sheet := BuildBalanceSheet(data, DefaultClassificationTable(), 2025, time.June)

	if !sheet.TotalAssets.Equal(d(16_000_000)) {
		t.Fatalf("expected total assets 16,000,000 got %s", sheet.TotalAssets)
	}
	if !sheet.TotalLiabilities.Equal(d(3_500_000)) {
		t.Fatalf("expected total liabilities 3,500,000 got %s", sheet.TotalLiabilities)
	}
	if !sheet.TotalEquity.Equal(d(12_500_000)) {
		t.Fatalf("expected total equity 12,500,000 got %s", sheet.TotalEquity)
	}
	if !sheet.TotalLiabilitiesAndEquity.Equal(d(16_000_000)) {
		t.Fatalf("expected total liabilities and equity 16,000,000 got %s", sheet.TotalLiabilitiesAndEquity)
	}
	if !sheet.Balanced {
		t.Fatalf("expected balanced sheet, delta %s", sheet.Delta)
	}
}

func TestBuildBalanceSheetUnbalancedDelta(t *testing.T) {
	// Same scenario minus the tax payable entry: the sheet must still be
	// returned, flagged unbalanced, with the delta equal to the omitted
	// amount.
	data := PeriodData{
		Accounts: agencyAccounts(),
		ManualItems: []ManualBalanceItem{
			{AccountID: intPtr(1), Amount: d(10_000_000)},
			{AccountID: intPtr(4), Amount: d(5_000_000)},
			{AccountID: intPtr(6), Amount: d(1_000_000)},
			{AccountID: intPtr(10), Amount: d(10_000_000)},
		},
		PendingIncome:   []IncomeRecord{{Amount: d(2_000_000), Status: IncomeStatusPending}},
		PendingExpenses: []ExpenseRecord{{Amount: d(3_000_000), Status: ExpenseStatusPending}},
		ReceivedIncome:  []IncomeRecord{{Amount: d(2_500_000), Status: IncomeStatusReceived}},
	}

	sheet := BuildBalanceSheet(data, DefaultClassificationTable(), 2025, time.June)

	if sheet.Balanced {
		t.Fatal("expected unbalanced sheet")
	}
	if !sheet.Delta.Equal(d(500_000)) {
		t.Fatalf("expected delta 500,000 got %s", sheet.Delta)
	}
}

func TestBuildBalanceSheetYTDProfit(t *testing.T) {
	data := PeriodData{
		ReceivedIncome: []IncomeRecord{
			{Amount: d(8_000_000)},
			{Amount: d(4_000_000)},
		},
		PaidExpenses: []ExpenseRecord{{Amount: d(3_000_000)}},
		PaidPayroll:  []PayrollRecord{{Amount: d(2_500_000)}},
	}

	sheet := BuildBalanceSheet(data, DefaultClassificationTable(), 2025, time.March)

	if !sheet.CurrentYearProfit.Equal(d(6_500_000)) {
		t.Fatalf("expected YTD profit 6,500,000 got %s", sheet.CurrentYearProfit)
	}
}

func TestBuildBalanceSheetIdempotent(t *testing.T) {
	data := PeriodData{
		Accounts: agencyAccounts(),
		ManualItems: []ManualBalanceItem{
			{AccountID: intPtr(1), Amount: decimal.RequireFromString("1234567.89")},
			{AccountID: intPtr(9), Amount: decimal.RequireFromString("1000000.50")},
		},
		ReceivedIncome: []IncomeRecord{{Amount: decimal.RequireFromString("99.99")}},
	}

	first := BuildBalanceSheet(data, DefaultClassificationTable(), 2025, time.September)
	second := BuildBalanceSheet(data, DefaultClassificationTable(), 2025, time.September)

	if !first.TotalAssets.Equal(second.TotalAssets) ||
		!first.TotalLiabilitiesAndEquity.Equal(second.TotalLiabilitiesAndEquity) ||
		!first.Delta.Equal(second.Delta) ||
		first.Balanced != second.Balanced {
		t.Fatalf("rebuild diverged: %+v vs %+v", first, second)
	}
}

func TestIsBalancedTolerance(t *testing.T) {
	cases := []struct {
		name     string
		delta    string
		balanced bool
	}{
		{"exact", "0", true},
		{"under tolerance", "0.009", true},
		{"negative under tolerance", "-0.009", true},
		{"at tolerance", "0.01", false},
		{"over tolerance", "0.011", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sheet := BalanceSheet{
				TotalAssets:               decimal.RequireFromString(tc.delta),
				TotalLiabilitiesAndEquity: decimal.Zero,
			}
			if got := sheet.IsBalanced(); got != tc.balanced {
				t.Fatalf("delta %s: expected balanced=%v got %v", tc.delta, tc.balanced, got)
			}
		})
	}
}

func TestPeriodBounds(t *testing.T) {
	yearStart, periodEnd := PeriodBounds(2025, time.June)
	if yearStart != time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected year start %s", yearStart)
	}
	if periodEnd.Month() != time.June || periodEnd.Day() != 30 {
		t.Fatalf("unexpected period end %s", periodEnd)
	}
	if got := PeriodMonth(2025, time.June); got != "2025-06" {
		t.Fatalf("unexpected period month %s", got)
	}
}
