package coa

import "time"

// Account models a chart of accounts node. Codes follow the agency's fixed
// numbering (1xxx assets, 2xxx liabilities, 3xxx equity).
type Account struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
