package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas-ops/atlas-erp/internal/finance"
	"github.com/atlas-ops/atlas-erp/internal/shared"
)

// Run is one employee-month payroll row. Draft and final runs count toward
// salary payable; only paid runs count toward payroll cost.
type Run struct {
	ID         int64                 `json:"id"`
	EmployeeID int64                 `json:"employee_id"`
	Amount     decimal.Decimal       `json:"amount"`
	Month      string                `json:"month"`
	Status     finance.PayrollStatus `json:"status"`
	PaidAt     *time.Time            `json:"paid_at"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// ValidateStatusTransition enforces draft -> final -> paid, no skips and
// no way back.
func ValidateStatusTransition(current, target finance.PayrollStatus) error {
	if current == target {
		return nil
	}
	switch current {
	case finance.PayrollStatusDraft:
		if target == finance.PayrollStatusFinal {
			return nil
		}
	case finance.PayrollStatusFinal:
		if target == finance.PayrollStatusPaid {
			return nil
		}
	}
	return shared.ErrInvalidStatusTransition
}
