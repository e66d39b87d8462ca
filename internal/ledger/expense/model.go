package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas-ops/atlas-erp/internal/finance"
	"github.com/atlas-ops/atlas-erp/internal/shared"
)

// Expense is one cost row. Category and sub-category feed the HPP
// classification; the project link is optional.
type Expense struct {
	ID          int64                 `json:"id"`
	ProjectID   *int64                `json:"project_id"`
	Amount      decimal.Decimal       `json:"amount"`
	Category    string                `json:"category"`
	SubCategory string                `json:"sub_category"`
	PaidAt      *time.Time            `json:"paid_at"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Status      finance.ExpenseStatus `json:"status"`
	Description string                `json:"description"`
}

// ValidateStatusTransition enforces the expense lifecycle: pending may be
// paid, paid rows are settled.
func ValidateStatusTransition(current, target finance.ExpenseStatus) error {
	if current == target {
		return nil
	}
	if current == finance.ExpenseStatusPending && target == finance.ExpenseStatusPaid {
		return nil
	}
	return shared.ErrInvalidStatusTransition
}
