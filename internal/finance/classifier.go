package finance

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Bucket names a semantic balance sheet line a manual item can land in.
type Bucket string

const (
	BucketCashAndBank             Bucket = "cash_and_bank"
	BucketEmployeeReceivables     Bucket = "employee_receivables"
	BucketPrepaidExpenses         Bucket = "prepaid_expenses"
	BucketOfficeEquipment         Bucket = "office_equipment"
	BucketVehicles                Bucket = "vehicles"
	BucketAccumulatedDepreciation Bucket = "accumulated_depreciation"
	BucketTaxPayable              Bucket = "tax_payable"
	BucketBPJSPayable             Bucket = "bpjs_payable"
	BucketLongTermLiabilities     Bucket = "long_term_liabilities"
	BucketPaidInCapital           Bucket = "paid_in_capital"
	BucketRetainedEarnings        Bucket = "retained_earnings"
)

// ClassificationTable maps chart-of-account codes to balance sheet buckets.
// It is configuration, not logic: report continuity depends on the code
// assignments staying stable, and new codes are added here without touching
// the aggregator.
type ClassificationTable struct {
	buckets map[string]Bucket
	codes   map[Bucket][]string
}

// NewClassificationTable builds a table from a code-to-bucket assignment.
func NewClassificationTable(assignment map[string]Bucket) ClassificationTable {
	t := ClassificationTable{
		buckets: make(map[string]Bucket, len(assignment)),
		codes:   make(map[Bucket][]string),
	}
	for code, bucket := range assignment {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		t.buckets[code] = bucket
		t.codes[bucket] = append(t.codes[bucket], code)
	}
	return t
}

// DefaultClassificationTable returns the standard agency chart assignment.
func DefaultClassificationTable() ClassificationTable {
	return NewClassificationTable(map[string]Bucket{
		"1110": BucketCashAndBank,
		"1130": BucketEmployeeReceivables,
		"1140": BucketPrepaidExpenses,
		"1210": BucketOfficeEquipment,
		"1220": BucketVehicles,
		"1230": BucketAccumulatedDepreciation,
		"2130": BucketTaxPayable,
		"2140": BucketBPJSPayable,
		"2200": BucketLongTermLiabilities,
		"3100": BucketPaidInCapital,
		"3200": BucketRetainedEarnings,
	})
}

// BucketFor resolves the bucket for an account code.
func (t ClassificationTable) BucketFor(code string) (Bucket, bool) {
	b, ok := t.buckets[code]
	return b, ok
}

// CodesFor lists the account codes assigned to a bucket.
func (t ClassificationTable) CodesFor(bucket Bucket) []string {
	return t.codes[bucket]
}

// IsContraAsset reports whether the code holds a contra-asset balance that
// operators must enter as a positive magnitude.
func (t ClassificationTable) IsContraAsset(code string) bool {
	return t.buckets[code] == BucketAccumulatedDepreciation
}

// SumByAccountCode resolves each manual item's account to its chart code and
// sums the amounts recorded under the requested code. Items without an
// account, or whose account is unknown, are skipped. No matching items is a
// valid state and yields zero.
func SumByAccountCode(items []ManualBalanceItem, accounts []ChartOfAccount, code string) decimal.Decimal {
	codeByID := make(map[int64]string, len(accounts))
	for _, acc := range accounts {
		codeByID[acc.ID] = acc.Code
	}
	total := decimal.Zero
	for _, item := range items {
		if item.AccountID == nil {
			continue
		}
		if codeByID[*item.AccountID] != code {
			continue
		}
		total = total.Add(item.Amount)
	}
	return total
}

// SumByBucket sums manual items across every account code assigned to a
// bucket.
func SumByBucket(items []ManualBalanceItem, accounts []ChartOfAccount, table ClassificationTable, bucket Bucket) decimal.Decimal {
	total := decimal.Zero
	for _, code := range table.CodesFor(bucket) {
		total = total.Add(SumByAccountCode(items, accounts, code))
	}
	return total
}

// CostRule matches an expense classified as cost of goods sold (HPP). An
// empty SubCategory matches the whole category.
type CostRule struct {
	Category    string
	SubCategory string
}

// CostTable is the HPP predicate table. Like the classification table it is
// configuration data so new cost categories are a data change.
type CostTable struct {
	rules []CostRule
}

// NewCostTable builds a cost table from explicit rules.
func NewCostTable(rules []CostRule) CostTable {
	kept := make([]CostRule, 0, len(rules))
	for _, r := range rules {
		r.Category = strings.TrimSpace(r.Category)
		r.SubCategory = strings.TrimSpace(r.SubCategory)
		if r.Category == "" {
			continue
		}
		kept = append(kept, r)
	}
	return CostTable{rules: kept}
}

// DefaultCostTable returns the standard HPP classification for an agency:
// direct production and campaign spend, plus KOL talent fees.
func DefaultCostTable() CostTable {
	return NewCostTable([]CostRule{
		{Category: "production"},
		{Category: "campaign", SubCategory: "media_buy"},
		{Category: "campaign", SubCategory: "kol_fee"},
		{Category: "outsourcing"},
	})
}

// IsHPP reports whether an expense category pair is cost of goods sold.
func (t CostTable) IsHPP(category, subCategory string) bool {
	for _, r := range t.rules {
		if !strings.EqualFold(r.Category, category) {
			continue
		}
		if r.SubCategory == "" || strings.EqualFold(r.SubCategory, subCategory) {
			return true
		}
	}
	return false
}

// SumHPP totals the expenses the cost table classifies as HPP.
func (t CostTable) SumHPP(expenses []ExpenseRecord) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if t.IsHPP(e.Category, e.SubCategory) {
			total = total.Add(e.Amount)
		}
	}
	return total
}
