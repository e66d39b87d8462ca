package financehttp

import (
	"github.com/shopspring/decimal"

	"github.com/atlas-ops/atlas-erp/internal/finance"
)

// BalanceSheetLine pairs the exact decimal value with its display text.
type BalanceSheetLine struct {
	Amount  decimal.Decimal `json:"amount"`
	Display string          `json:"display"`
}

// BalanceSheetResponse is the JSON shape of the balance sheet report.
type BalanceSheetResponse struct {
	Period string `json:"period"`

	CashAndBank         BalanceSheetLine `json:"cash_and_bank"`
	AccountsReceivable  BalanceSheetLine `json:"accounts_receivable"`
	EmployeeReceivables BalanceSheetLine `json:"employee_receivables"`
	PrepaidExpenses     BalanceSheetLine `json:"prepaid_expenses"`
	TotalCurrentAssets  BalanceSheetLine `json:"total_current_assets"`

	OfficeEquipment         BalanceSheetLine `json:"office_equipment"`
	Vehicles                BalanceSheetLine `json:"vehicles"`
	AccumulatedDepreciation BalanceSheetLine `json:"accumulated_depreciation"`
	TotalFixedAssets        BalanceSheetLine `json:"total_fixed_assets"`

	TotalAssets BalanceSheetLine `json:"total_assets"`

	AccountsPayable         BalanceSheetLine `json:"accounts_payable"`
	SalaryPayable           BalanceSheetLine `json:"salary_payable"`
	TaxPayable              BalanceSheetLine `json:"tax_payable"`
	BPJSPayable             BalanceSheetLine `json:"bpjs_payable"`
	TotalCurrentLiabilities BalanceSheetLine `json:"total_current_liabilities"`

	LongTermLiabilities BalanceSheetLine `json:"long_term_liabilities"`
	TotalLiabilities    BalanceSheetLine `json:"total_liabilities"`

	PaidInCapital     BalanceSheetLine `json:"paid_in_capital"`
	RetainedEarnings  BalanceSheetLine `json:"retained_earnings"`
	CurrentYearProfit BalanceSheetLine `json:"current_year_profit"`
	TotalEquity       BalanceSheetLine `json:"total_equity"`

	TotalLiabilitiesAndEquity BalanceSheetLine `json:"total_liabilities_and_equity"`

	Delta    BalanceSheetLine `json:"delta"`
	Balanced bool             `json:"balanced"`
}

// InsightsResponse is the JSON shape of the monthly insight ratios.
type InsightsResponse struct {
	Period string `json:"period"`

	Revenue  BalanceSheetLine `json:"revenue"`
	Expenses BalanceSheetLine `json:"expenses"`
	HPP      BalanceSheetLine `json:"hpp"`
	Payroll  BalanceSheetLine `json:"payroll"`
	Cash     BalanceSheetLine `json:"cash"`

	CostRatio       string `json:"cost_ratio"`
	PayrollRatio    string `json:"payroll_ratio"`
	OperatingMargin string `json:"operating_margin"`
	RunwayMonths    string `json:"runway_months"`
}

func line(amount decimal.Decimal) BalanceSheetLine {
	return BalanceSheetLine{Amount: amount, Display: finance.FormatIDR(amount)}
}

func toBalanceSheetResponse(sheet finance.BalanceSheet) BalanceSheetResponse {
	return BalanceSheetResponse{
		Period: finance.PeriodMonth(sheet.Year, sheet.Month),

		CashAndBank:         line(sheet.CashAndBank),
		AccountsReceivable:  line(sheet.AccountsReceivable),
		EmployeeReceivables: line(sheet.EmployeeReceivables),
		PrepaidExpenses:     line(sheet.PrepaidExpenses),
		TotalCurrentAssets:  line(sheet.TotalCurrentAssets),

		OfficeEquipment:         line(sheet.OfficeEquipment),
		Vehicles:                line(sheet.Vehicles),
		AccumulatedDepreciation: line(sheet.AccumulatedDepreciation),
		TotalFixedAssets:        line(sheet.TotalFixedAssets),

		TotalAssets: line(sheet.TotalAssets),

		AccountsPayable:         line(sheet.AccountsPayable),
		SalaryPayable:           line(sheet.SalaryPayable),
		TaxPayable:              line(sheet.TaxPayable),
		BPJSPayable:             line(sheet.BPJSPayable),
		TotalCurrentLiabilities: line(sheet.TotalCurrentLiabilities),

		LongTermLiabilities: line(sheet.LongTermLiabilities),
		TotalLiabilities:    line(sheet.TotalLiabilities),

		PaidInCapital:     line(sheet.PaidInCapital),
		RetainedEarnings:  line(sheet.RetainedEarnings),
		CurrentYearProfit: line(sheet.CurrentYearProfit),
		TotalEquity:       line(sheet.TotalEquity),

		TotalLiabilitiesAndEquity: line(sheet.TotalLiabilitiesAndEquity),

		Delta:    line(sheet.Delta),
		Balanced: sheet.Balanced,
	}
}

func toInsightsResponse(in finance.Insights) InsightsResponse {
	runway := "n/a"
	if in.RunwayKnown {
		runway = finance.FormatMonths(in.RunwayMonths)
	}
	return InsightsResponse{
		Period: finance.PeriodMonth(in.Year, in.Month),

		Revenue:  line(in.Totals.Revenue),
		Expenses: line(in.Totals.Expenses),
		HPP:      line(in.Totals.HPP),
		Payroll:  line(in.Totals.Payroll),
		Cash:     line(in.CashBalance),

		CostRatio:       finance.FormatPercent(in.CostRatio),
		PayrollRatio:    finance.FormatPercent(in.PayrollRatio),
		OperatingMargin: finance.FormatPercent(in.OperatingMargin),
		RunwayMonths:    runway,
	}
}
