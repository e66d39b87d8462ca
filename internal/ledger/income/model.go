package income

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas-ops/atlas-erp/internal/finance"
	"github.com/atlas-ops/atlas-erp/internal/shared"
)

// Income is one revenue row as written by the operations screens. Client
// and project links are optional; records without them still count toward
// revenue and receivables but are excluded from per-client groupings.
type Income struct {
	ID          int64                `json:"id"`
	ClientID    *int64               `json:"client_id"`
	ProjectID   *int64               `json:"project_id"`
	Amount      decimal.Decimal      `json:"amount"`
	Date        time.Time            `json:"date"`
	Status      finance.IncomeStatus `json:"status"`
	Description string               `json:"description"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ValidateStatusTransition enforces the income lifecycle: pending may be
// marked received, nothing moves backwards.
func ValidateStatusTransition(current, target finance.IncomeStatus) error {
	if current == target {
		return nil
	}
	if current == finance.IncomeStatusPending && target == finance.IncomeStatusReceived {
		return nil
	}
	return shared.ErrInvalidStatusTransition
}
