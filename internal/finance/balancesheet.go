package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// balanceTolerance is the rounding slack allowed between the two sides of
// the sheet before it is flagged unbalanced.
var balanceTolerance = decimal.NewFromFloat(0.01)

// BuildBalanceSheet aggregates one period's ledger snapshot into a balance
// sheet. It is a pure function: identical inputs produce identical sheets.
// An unbalanced sheet is still returned; Balanced and Delta report the
// invariant, they never reject the result.
func BuildBalanceSheet(data PeriodData, table ClassificationTable, year int, month time.Month) BalanceSheet {
	yearStart, periodEnd := PeriodBounds(year, month)

	sheet := BalanceSheet{
		Year:      year,
		Month:     month,
		YearStart: yearStart,
		PeriodEnd: periodEnd,
	}

	manual := func(bucket Bucket) decimal.Decimal {
		return SumByBucket(data.ManualItems, data.Accounts, table, bucket)
	}

	// Current assets.
	sheet.CashAndBank = manual(BucketCashAndBank)
	sheet.AccountsReceivable = sumIncome(data.PendingIncome)
	sheet.EmployeeReceivables = manual(BucketEmployeeReceivables)
	sheet.PrepaidExpenses = manual(BucketPrepaidExpenses)
	sheet.TotalCurrentAssets = sheet.CashAndBank.
		Add(sheet.AccountsReceivable).
		Add(sheet.EmployeeReceivables).
		Add(sheet.PrepaidExpenses)

	// Fixed assets. Depreciation is stored as a positive magnitude and
	// subtracted here.
	sheet.OfficeEquipment = manual(BucketOfficeEquipment)
	sheet.Vehicles = manual(BucketVehicles)
	sheet.AccumulatedDepreciation = manual(BucketAccumulatedDepreciation)
	sheet.TotalFixedAssets = sheet.OfficeEquipment.
		Add(sheet.Vehicles).
		Sub(sheet.AccumulatedDepreciation)

	sheet.TotalAssets = sheet.TotalCurrentAssets.Add(sheet.TotalFixedAssets)

	// Current liabilities.
	sheet.AccountsPayable = sumExpenses(data.PendingExpenses)
	sheet.SalaryPayable = sumPayroll(data.PendingPayroll)
	sheet.TaxPayable = manual(BucketTaxPayable)
	sheet.BPJSPayable = manual(BucketBPJSPayable)
	sheet.TotalCurrentLiabilities = sheet.AccountsPayable.
		Add(sheet.SalaryPayable).
		Add(sheet.TaxPayable).
		Add(sheet.BPJSPayable)

	sheet.LongTermLiabilities = manual(BucketLongTermLiabilities)
	sheet.TotalLiabilities = sheet.TotalCurrentLiabilities.Add(sheet.LongTermLiabilities)

	// Equity, with the YTD result as the current-year profit component.
	sheet.PaidInCapital = manual(BucketPaidInCapital)
	sheet.RetainedEarnings = manual(BucketRetainedEarnings)
	sheet.CurrentYearProfit = YTDProfit(data.ReceivedIncome, data.PaidExpenses, data.PaidPayroll)
	sheet.TotalEquity = sheet.PaidInCapital.
		Add(sheet.RetainedEarnings).
		Add(sheet.CurrentYearProfit)

	sheet.TotalLiabilitiesAndEquity = sheet.TotalLiabilities.Add(sheet.TotalEquity)

	sheet.Delta = sheet.TotalAssets.Sub(sheet.TotalLiabilitiesAndEquity)
	sheet.Balanced = sheet.IsBalanced()

	return sheet
}

// IsBalanced reports whether assets equal liabilities plus equity within the
// fixed tolerance. Pure predicate; an unbalanced sheet is a reporting
// signal, not an error.
func (s BalanceSheet) IsBalanced() bool {
	return s.TotalAssets.Sub(s.TotalLiabilitiesAndEquity).Abs().Cmp(balanceTolerance) < 0
}

// YTDProfit is income minus expenses minus payroll over the fetched YTD
// collections.
func YTDProfit(income []IncomeRecord, expenses []ExpenseRecord, payroll []PayrollRecord) decimal.Decimal {
	return sumIncome(income).Sub(sumExpenses(expenses)).Sub(sumPayroll(payroll))
}

// PeriodBounds derives the reporting year start and the period end (last
// instant of the selected month) for an as-of selection.
func PeriodBounds(year int, month time.Month) (yearStart, periodEnd time.Time) {
	yearStart = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	firstOfNext := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	periodEnd = firstOfNext.Add(-time.Nanosecond)
	return yearStart, periodEnd
}

// PeriodMonth formats the YYYY-MM key payroll rows are stored under.
func PeriodMonth(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func sumIncome(rows []IncomeRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
	}
	return total
}

func sumExpenses(rows []ExpenseRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
	}
	return total
}

func sumPayroll(rows []PayrollRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
	}
	return total
}
