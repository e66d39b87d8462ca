package coa

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	ledgershared "github.com/atlas-ops/atlas-erp/internal/ledger/shared"
)

var codePattern = regexp.MustCompile(`^[1-3]\d{3}$`)

// Service manages the chart of accounts. Accounts are deactivated rather
// than deleted so historical manual items keep resolving.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, includeInactive bool) ([]Account, error) {
	return s.repo.List(ctx, includeInactive)
}

func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	if id <= 0 {
		return Account{}, fmt.Errorf("%w: invalid account id", ledgershared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, acc Account) (Account, error) {
	if err := s.validate(acc); err != nil {
		return Account{}, err
	}
	return s.repo.Create(ctx, acc)
}

func (s *Service) Update(ctx context.Context, id int64, acc Account) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid account id", ledgershared.ErrValidation)
	}
	if err := s.validate(acc); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, acc)
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid account id", ledgershared.ErrValidation)
	}
	return s.repo.SetActive(ctx, id, false)
}

func (s *Service) Activate(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid account id", ledgershared.ErrValidation)
	}
	return s.repo.SetActive(ctx, id, true)
}

func (s *Service) validate(acc Account) error {
	if !codePattern.MatchString(acc.Code) {
		return fmt.Errorf("%w: code must be four digits starting 1-3", ledgershared.ErrValidation)
	}
	if strings.TrimSpace(acc.Name) == "" {
		return fmt.Errorf("%w: name is required", ledgershared.ErrValidation)
	}
	return nil
}
