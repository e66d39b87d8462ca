package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/atlas-ops/atlas-erp/internal/finance"
	ledgershared "github.com/atlas-ops/atlas-erp/internal/ledger/shared"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Service runs the payroll lifecycle. Amounts are only editable while a run
// is a draft; finalising freezes it, paying stamps the payment date.
type Service struct {
	repo        Repository
	invalidator ledgershared.ReportInvalidator
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(repo Repository, invalidator ledgershared.ReportInvalidator, logger *slog.Logger) *Service {
	return &Service{repo: repo, invalidator: invalidator, logger: logger, now: time.Now}
}

func (s *Service) List(ctx context.Context, filters ledgershared.ListFilters) ([]Run, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Run, error) {
	if id <= 0 {
		return Run{}, fmt.Errorf("%w: invalid payroll id", ledgershared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, run Run) (Run, error) {
	if run.EmployeeID <= 0 {
		return Run{}, fmt.Errorf("%w: employee is required", ledgershared.ErrValidation)
	}
	if !run.Amount.IsPositive() {
		return Run{}, fmt.Errorf("%w: amount must be positive", ledgershared.ErrValidation)
	}
	if !monthPattern.MatchString(run.Month) {
		return Run{}, fmt.Errorf("%w: month must be YYYY-MM", ledgershared.ErrValidation)
	}
	run.Status = finance.PayrollStatusDraft
	created, err := s.repo.Create(ctx, run)
	if err != nil {
		return Run{}, err
	}
	s.bump(ctx)
	return created, nil
}

func (s *Service) UpdateAmount(ctx context.Context, id int64, run Run) error {
	if !run.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ledgershared.ErrValidation)
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != finance.PayrollStatusDraft {
		return fmt.Errorf("%w: only draft runs are editable", ledgershared.ErrValidation)
	}
	if err := s.repo.UpdateAmount(ctx, id, run); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// Finalize freezes a draft run.
func (s *Service) Finalize(ctx context.Context, id int64) error {
	return s.transition(ctx, id, finance.PayrollStatusFinal, nil)
}

// MarkPaid settles a final run, stamping the payment date.
func (s *Service) MarkPaid(ctx context.Context, id int64) error {
	paidAt := s.now()
	return s.transition(ctx, id, finance.PayrollStatusPaid, &paidAt)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != finance.PayrollStatusDraft {
		return fmt.Errorf("%w: only draft runs can be deleted", ledgershared.ErrValidation)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) transition(ctx context.Context, id int64, target finance.PayrollStatus, paidAt *time.Time) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := ValidateStatusTransition(current.Status, target); err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, id, target, paidAt); err != nil {
		return err
	}
	s.bump(ctx)
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
