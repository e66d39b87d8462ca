package balances

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atlas-ops/atlas-erp/internal/finance"
	ledgershared "github.com/atlas-ops/atlas-erp/internal/ledger/shared"
	"github.com/atlas-ops/atlas-erp/internal/shared"
)

// AccountResolver resolves a chart account id to its code.
type AccountResolver interface {
	CodeForAccount(ctx context.Context, id int64) (string, error)
}

// Service validates manual balance adjustments at entry time. Contra-asset
// entries (accumulated depreciation) must be stored as positive magnitudes;
// the aggregator subtracts them, so accepting a negative entry here would
// double-subtract downstream.
type Service struct {
	repo        Repository
	accounts    AccountResolver
	table       finance.ClassificationTable
	invalidator ledgershared.ReportInvalidator
	logger      *slog.Logger
}

func NewService(repo Repository, accounts AccountResolver, table finance.ClassificationTable, invalidator ledgershared.ReportInvalidator, logger *slog.Logger) *Service {
	return &Service{repo: repo, accounts: accounts, table: table, invalidator: invalidator, logger: logger}
}

func (s *Service) List(ctx context.Context, filters ledgershared.ListFilters) ([]Item, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	if id <= 0 {
		return Item{}, fmt.Errorf("%w: invalid balance item id", ledgershared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, item Item) (Item, error) {
	if err := s.validate(ctx, item); err != nil {
		return Item{}, err
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return Item{}, err
	}
	s.bump(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, item Item) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid balance item id", ledgershared.ErrValidation)
	}
	if err := s.validate(ctx, item); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, item); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid balance item id", ledgershared.ErrValidation)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// ReplaceForDate validates and swaps the whole adjustment set for one date.
func (s *Service) ReplaceForDate(ctx context.Context, asOf time.Time, items []Item) ([]Item, error) {
	if asOf.IsZero() {
		return nil, fmt.Errorf("%w: as-of date is required", ledgershared.ErrValidation)
	}
	for _, item := range items {
		if err := s.validate(ctx, item); err != nil {
			return nil, err
		}
	}
	saved, err := s.repo.ReplaceForDate(ctx, asOf, items)
	if err != nil {
		return nil, err
	}
	s.bump(ctx)
	return saved, nil
}

func (s *Service) validate(ctx context.Context, item Item) error {
	if item.Amount.IsZero() {
		return fmt.Errorf("%w: amount must not be zero", ledgershared.ErrValidation)
	}
	if item.AccountID == nil {
		return nil
	}
	code, err := s.accounts.CodeForAccount(ctx, *item.AccountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: unknown account", ledgershared.ErrValidation)
		}
		return err
	}
	if s.table.IsContraAsset(code) {
		if item.Amount.IsNegative() {
			return fmt.Errorf("%w: contra-asset balances are entered as positive magnitudes", ledgershared.ErrValidation)
		}
		return nil
	}
	if item.Amount.IsNegative() {
		return fmt.Errorf("%w: negative balances are reserved for contra-asset accounts", ledgershared.ErrValidation)
	}
	return nil
}

func (s *Service) bump(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateReports(ctx); err != nil && s.logger != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("invalidate reports", slog.Any("error", err))
		}
	}
}
