package finance

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ratioScale fixes the precision for ratio divisions; display formatting
// rounds further.
const ratioScale = 8

// CostRatio is HPP-classified spend as a percentage of revenue. Zero
// revenue yields zero, never a division error.
func CostRatio(totalHPP, totalRevenue decimal.Decimal) decimal.Decimal {
	if !totalRevenue.IsPositive() {
		return decimal.Zero
	}
	return totalHPP.DivRound(totalRevenue, ratioScale).Mul(hundred)
}

// PayrollRatio is payroll cost as a percentage of revenue.
func PayrollRatio(totalPayroll, totalRevenue decimal.Decimal) decimal.Decimal {
	if !totalRevenue.IsPositive() {
		return decimal.Zero
	}
	return totalPayroll.DivRound(totalRevenue, ratioScale).Mul(hundred)
}

// OperatingMargin is the percentage of revenue left after expenses and
// payroll.
func OperatingMargin(totalRevenue, totalExpenses, totalPayroll decimal.Decimal) decimal.Decimal {
	if !totalRevenue.IsPositive() {
		return decimal.Zero
	}
	operating := totalRevenue.Sub(totalExpenses).Sub(totalPayroll)
	return operating.DivRound(totalRevenue, ratioScale).Mul(hundred)
}

// CashRunwayMonths reports how many months the cash balance sustains the
// observed monthly burn. When burn is zero or negative the runway is
// indefinite and ok is false; callers render that as "n/a" rather than a
// number.
func CashRunwayMonths(cashBalance, monthlyBurn decimal.Decimal) (months decimal.Decimal, ok bool) {
	if !monthlyBurn.IsPositive() {
		return decimal.Zero, false
	}
	return cashBalance.DivRound(monthlyBurn, ratioScale), true
}

// DeriveInsights computes the four dashboard ratios from one month's totals
// and the sheet's cash balance.
func DeriveInsights(totals MonthlyTotals, cashBalance decimal.Decimal) Insights {
	burn := totals.Expenses.Add(totals.Payroll)
	months, ok := CashRunwayMonths(cashBalance, burn)
	return Insights{
		Totals:          totals,
		CashBalance:     cashBalance,
		CostRatio:       CostRatio(totals.HPP, totals.Revenue),
		PayrollRatio:    PayrollRatio(totals.Payroll, totals.Revenue),
		OperatingMargin: OperatingMargin(totals.Revenue, totals.Expenses, totals.Payroll),
		RunwayMonths:    months,
		RunwayKnown:     ok,
	}
}
