package balances

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a manually entered balance adjustment tied to a chart of accounts
// node: fixed-asset book values, accrued tax, capital, and the like.
type Item struct {
	ID        int64           `json:"id"`
	AccountID *int64          `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	AsOfDate  time.Time       `json:"as_of_date"`
	Note      string          `json:"note"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
