package expense

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

// Service applies expense lifecycle rules. Marking a row paid stamps the
// payment date the aggregation later filters on.
type Service struct {
	repo        Repository
	invalidator ledgershared.ReportInvalidator
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(repo Repository, invalidator ledgershared.ReportInvalidator, logger *slog.Logger) *Service {
	return &Service{repo: repo, invalidator: invalidator, logger: logger, now: time.Now}
}

func (s *Service) List(ctx context.Context, filters ledgershared.ListFilters) ([]Expense, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Expense, error) {
	if id <= 0 {
		return Expense{}, fmt.Errorf("%w: invalid expense id", ledgershared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, rec Expense) (Expense, error) {
	if err := s.validate(rec); err != nil {
		return Expense{}, err
	}
	if rec.Status == "" {
		rec.Status = finance.ExpenseStatusPending
	}
	if rec.Status == finance.ExpenseStatusPaid {
		// Direct paid entry is allowed for petty cash flows, but it must
		// carry the payment stamp.
		return Expense{}, fmt.Errorf("%w: create as pending then mark paid", ledgershared.ErrValidation)
	}
	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return Expense{}, err
	}
	s.bump(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, rec Expense) error {
	if err := s.validate(rec); err != nil {
		return err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == finance.ExpenseStatusPaid {
		return fmt.Errorf("%w: paid expenses are settled", shared.ErrInvalidStatusTransition)
	}
	if rec.Status != "" {
		if err := ValidateStatusTransition(current.Status, rec.Status); err != nil {
			return err
		}
	} else {
		rec.Status = current.Status
	}
	if err := s.repo.Update(ctx, id, rec); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// MarkPaid settles a pending expense as of the given time (now when zero).
func (s *Service) MarkPaid(ctx context.Context, id int64, paidAt time.Time) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := ValidateStatusTransition(current.Status, finance.ExpenseStatusPaid); err != nil {
		return err
	}
	if paidAt.IsZero() {
		paidAt = s.now()
	}
	if err := s.repo.MarkPaid(ctx, id, paidAt); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid expense id", ledgershared.ErrValidation)
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == finance.ExpenseStatusPaid {
		return fmt.Errorf("%w: paid expenses are settled", shared.ErrInvalidStatusTransition)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) validate(rec Expense) error {
	if !rec.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ledgershared.ErrValidation)
	}
	if rec.Category == "" {
		return fmt.Errorf("%w: category is required", ledgershared.ErrValidation)
	}
	switch rec.Status {
	case "", finance.ExpenseStatusPending, finance.ExpenseStatusPaid:
	default:
		return fmt.Errorf("%w: unknown status %q", ledgershared.ErrValidation, rec.Status)
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
