package income

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atlas-ops/atlas-erp/internal/finance"
	ledgershared "github.com/atlas-ops/atlas-erp/internal/ledger/shared"
)

// Service applies income lifecycle rules and keeps the report cache honest
// after every write.
type Service struct {
	repo        Repository
	invalidator ledgershared.ReportInvalidator
	logger      *slog.Logger
}

func NewService(repo Repository, invalidator ledgershared.ReportInvalidator, logger *slog.Logger) *Service {
	return &Service{repo: repo, invalidator: invalidator, logger: logger}
}

func (s *Service) List(ctx context.Context, filters ledgershared.ListFilters) ([]Income, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Income, error) {
	if id <= 0 {
		return Income{}, fmt.Errorf("%w: invalid income id", ledgershared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, rec Income) (Income, error) {
	if err := s.validate(rec); err != nil {
		return Income{}, err
	}
	if rec.Status == "" {
		rec.Status = finance.IncomeStatusPending
	}
	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return Income{}, err
	}
	s.bump(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, rec Income) error {
	if err := s.validate(rec); err != nil {
		return err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := ValidateStatusTransition(current.Status, rec.Status); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, rec); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) MarkReceived(ctx context.Context, id int64) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := ValidateStatusTransition(current.Status, finance.IncomeStatusReceived); err != nil {
		return err
	}
	current.Status = finance.IncomeStatusReceived
	if err := s.repo.Update(ctx, id, current); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid income id", ledgershared.ErrValidation)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) validate(rec Income) error {
	if !rec.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ledgershared.ErrValidation)
	}
	if rec.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ledgershared.ErrValidation)
	}
	switch rec.Status {
	case "", finance.IncomeStatusPending, finance.IncomeStatusReceived:
	default:
		return fmt.Errorf("%w: unknown status %q", ledgershared.ErrValidation, rec.Status)
	}
	return nil
}

// bump invalidates cached reports; a failed bump only costs freshness, so
// it is logged and swallowed.
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
