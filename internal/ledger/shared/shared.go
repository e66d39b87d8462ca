// Package shared holds cross-module helpers for the ledger write paths.
package shared

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrValidation = errors.New("validation failed")
)

// ListFilters represents the standard ledger listing filters.
type ListFilters struct {
	Page   int
	Limit  int
	Status string
	Month  string
	Search string
}

// Normalize clamps paging values into range.
func (f ListFilters) Normalize() ListFilters {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

// Offset derives the SQL offset for the normalized page.
func (f ListFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ReportInvalidator bumps the finance report cache after a ledger write.
type ReportInvalidator interface {
	InvalidateReports(ctx context.Context) error
}

// MapPgError translates Postgres constraint violations into ledger errors.
func MapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
