package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeStatus enumerates income record states.
type IncomeStatus string

const (
	IncomeStatusPending  IncomeStatus = "pending"
	IncomeStatusReceived IncomeStatus = "received"
)

// ExpenseStatus enumerates expense record states.
type ExpenseStatus string

const (
	ExpenseStatusPending ExpenseStatus = "pending"
	ExpenseStatusPaid    ExpenseStatus = "paid"
)

// PayrollStatus enumerates payroll run states.
type PayrollStatus string

const (
	PayrollStatusDraft PayrollStatus = "draft"
	PayrollStatusFinal PayrollStatus = "final"
	PayrollStatusPaid  PayrollStatus = "paid"
)

// ChartOfAccount models a chart of accounts node used to classify manual
// balance items.
type ChartOfAccount struct {
	ID       int64
	Code     string
	Name     string
	IsActive bool
}

// ManualBalanceItem is a manually entered balance not derivable from the
// transactional tables (fixed-asset book values, accrued tax, capital).
// A nil AccountID leaves the item out of every classification bucket.
type ManualBalanceItem struct {
	ID        int64
	AccountID *int64
	Amount    decimal.Decimal
	AsOfDate  time.Time
	Note      string
}

// IncomeRecord is a revenue row. Received rows inside the period count
// toward revenue; pending rows as of period end count toward receivables.
type IncomeRecord struct {
	ID     int64
	Amount decimal.Decimal
	Date   time.Time
	Status IncomeStatus
}

// ExpenseRecord is a cost row. Paid rows inside the period count toward
// expenses; pending rows as of period end count toward payables.
type ExpenseRecord struct {
	ID          int64
	Amount      decimal.Decimal
	Category    string
	SubCategory string
	PaidAt      *time.Time
	CreatedAt   time.Time
	Status      ExpenseStatus
}

// PayrollRecord is one employee-month payroll row keyed by a YYYY-MM month.
type PayrollRecord struct {
	ID     int64
	Amount decimal.Decimal
	Month  string
	Status PayrollStatus
}

// PeriodData is the joined snapshot of every ledger read needed to build a
// balance sheet for one period. It is immutable input for the aggregator.
type PeriodData struct {
	ManualItems     []ManualBalanceItem
	Accounts        []ChartOfAccount
	ReceivedIncome  []IncomeRecord
	PaidExpenses    []ExpenseRecord
	PaidPayroll     []PayrollRecord
	PendingIncome   []IncomeRecord
	PendingExpenses []ExpenseRecord
	PendingPayroll  []PayrollRecord
}

// BalanceSheet is the derived snapshot for one (year, month) selection.
// It is constructed fresh on every request and never mutated in place.
type BalanceSheet struct {
	Year      int
	Month     time.Month
	YearStart time.Time
	PeriodEnd time.Time

	CashAndBank         decimal.Decimal
	AccountsReceivable  decimal.Decimal
	EmployeeReceivables decimal.Decimal
	PrepaidExpenses     decimal.Decimal
	TotalCurrentAssets  decimal.Decimal

	OfficeEquipment         decimal.Decimal
	Vehicles                decimal.Decimal
	AccumulatedDepreciation decimal.Decimal
	TotalFixedAssets        decimal.Decimal

	TotalAssets decimal.Decimal

	AccountsPayable         decimal.Decimal
	SalaryPayable           decimal.Decimal
	TaxPayable              decimal.Decimal
	BPJSPayable             decimal.Decimal
	TotalCurrentLiabilities decimal.Decimal

	LongTermLiabilities decimal.Decimal
	TotalLiabilities    decimal.Decimal

	PaidInCapital     decimal.Decimal
	RetainedEarnings  decimal.Decimal
	CurrentYearProfit decimal.Decimal
	TotalEquity       decimal.Decimal

	TotalLiabilitiesAndEquity decimal.Decimal

	// Delta is assets minus liabilities-and-equity; Balanced holds the
	// invariant check at construction time.
	Delta    decimal.Decimal
	Balanced bool
}

// MonthlyTotals holds the single-month sums the insight ratios derive from,
// as opposed to the YTD sums inside the balance sheet.
type MonthlyTotals struct {
	Revenue  decimal.Decimal
	Expenses decimal.Decimal
	HPP      decimal.Decimal
	Payroll  decimal.Decimal
}

// Insights carries the derived ratios surfaced on the finance dashboard.
type Insights struct {
	Year  int
	Month time.Month

	Totals      MonthlyTotals
	CashBalance decimal.Decimal

	CostRatio       decimal.Decimal
	PayrollRatio    decimal.Decimal
	OperatingMargin decimal.Decimal

	RunwayMonths decimal.Decimal
	RunwayKnown  bool
}
