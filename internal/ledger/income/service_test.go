package income

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-ops/atlas-erp/internal/finance"
	ledgershared "github.com/atlas-ops/atlas-erp/internal/ledger/shared"
	"github.com/atlas-ops/atlas-erp/internal/shared"
)

type mockRepository struct {
	records map[int64]Income
	nextID  int64
	failOn  string
	err     error
}

func newMockRepository() *mockRepository {
	return &mockRepository{records: make(map[int64]Income), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context, filters ledgershared.ListFilters) ([]Income, int, error) {
	if m.failOn == "list" {
		return nil, 0, m.err
	}
	out := make([]Income, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Income, error) {
	if m.failOn == "get" {
		return Income{}, m.err
	}
	rec, ok := m.records[id]
	if !ok {
		return Income{}, ledgershared.ErrNotFound
	}
	return rec, nil
}

func (m *mockRepository) Create(ctx context.Context, rec Income) (Income, error) {
	if m.failOn == "create" {
		return Income{}, m.err
	}
	rec.ID = m.nextID
	m.nextID++
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, rec Income) error {
	if m.failOn == "update" {
		return m.err
	}
	if _, ok := m.records[id]; !ok {
		return ledgershared.ErrNotFound
	}
	rec.ID = id
	m.records[id] = rec
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.records[id]; !ok {
		return ledgershared.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

type mockInvalidator struct {
	bumps int
	err   error
}

func (m *mockInvalidator) InvalidateReports(ctx context.Context) error {
	m.bumps++
	return m.err
}

func validIncome() Income {
	return Income{
		Amount:      decimal.NewFromInt(2_500_000),
		Date:        time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
		Description: "retainer",
	}
}

func TestCreateDefaultsToPending(t *testing.T) {
	repo := newMockRepository()
	inv := &mockInvalidator{}
	svc := NewService(repo, inv, nil)

	created, err := svc.Create(context.Background(), validIncome())
	require.NoError(t, err)
	assert.Equal(t, finance.IncomeStatusPending, created.Status)
	assert.Equal(t, 1, inv.bumps)
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)

	rec := validIncome()
	rec.Amount = decimal.Zero
	_, err := svc.Create(context.Background(), rec)
	assert.ErrorIs(t, err, ledgershared.ErrValidation)

	rec.Amount = decimal.NewFromInt(-100)
	_, err = svc.Create(context.Background(), rec)
	assert.ErrorIs(t, err, ledgershared.ErrValidation)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)

	rec := validIncome()
	rec.Status = finance.IncomeStatus("archived")
	_, err := svc.Create(context.Background(), rec)
	assert.ErrorIs(t, err, ledgershared.ErrValidation)
}

func TestMarkReceived(t *testing.T) {
	repo := newMockRepository()
	inv := &mockInvalidator{}
	svc := NewService(repo, inv, nil)

	created, err := svc.Create(context.Background(), validIncome())
	require.NoError(t, err)

	require.NoError(t, svc.MarkReceived(context.Background(), created.ID))
	assert.Equal(t, finance.IncomeStatusReceived, repo.records[created.ID].Status)
	assert.Equal(t, 2, inv.bumps)
}

func TestMarkReceivedIsIdempotent(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validIncome())
	require.NoError(t, err)
	require.NoError(t, svc.MarkReceived(context.Background(), created.ID))
	require.NoError(t, svc.MarkReceived(context.Background(), created.ID))
}

func TestUpdateRejectsBackwardTransition(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validIncome())
	require.NoError(t, err)
	require.NoError(t, svc.MarkReceived(context.Background(), created.ID))

	rec := repo.records[created.ID]
	rec.Status = finance.IncomeStatusPending
	err = svc.Update(context.Background(), created.ID, rec)
	assert.ErrorIs(t, err, shared.ErrInvalidStatusTransition)
}

func TestBumpFailureDoesNotFailWrite(t *testing.T) {
	repo := newMockRepository()
	inv := &mockInvalidator{err: errors.New("redis down")}
	svc := NewService(repo, inv, nil)

	_, err := svc.Create(context.Background(), validIncome())
	assert.NoError(t, err)
	assert.Equal(t, 1, inv.bumps)
}

func TestGetRejectsInvalidID(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	_, err := svc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, ledgershared.ErrValidation)
}
