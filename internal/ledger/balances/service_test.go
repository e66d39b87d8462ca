package balances

import (
	"context"
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
	records map[int64]Item
	nextID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{records: make(map[int64]Item), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context, filters ledgershared.ListFilters) ([]Item, int, error) {
	out := make([]Item, 0, len(m.records))
	for _, item := range m.records {
		out = append(out, item)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Item, error) {
	item, ok := m.records[id]
	if !ok {
		return Item{}, ledgershared.ErrNotFound
	}
	return item, nil
}

func (m *mockRepository) Create(ctx context.Context, item Item) (Item, error) {
	item.ID = m.nextID
	m.nextID++
	m.records[item.ID] = item
	return item, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, item Item) error {
	if _, ok := m.records[id]; !ok {
		return ledgershared.ErrNotFound
	}
	item.ID = id
	m.records[id] = item
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.records[id]; !ok {
		return ledgershared.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockRepository) ReplaceForDate(ctx context.Context, asOf time.Time, items []Item) ([]Item, error) {
	for id, existing := range m.records {
		if existing.AsOfDate.Equal(asOf) {
			delete(m.records, id)
		}
	}
	saved := make([]Item, 0, len(items))
	for _, item := range items {
		item.AsOfDate = asOf
		created, _ := m.Create(ctx, item)
		saved = append(saved, created)
	}
	return saved, nil
}

type mockResolver struct {
	codes map[int64]string
}

func (m mockResolver) CodeForAccount(ctx context.Context, id int64) (string, error) {
	code, ok := m.codes[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	return code, nil
}

func newTestService(repo Repository) *Service {
	resolver := mockResolver{codes: map[int64]string{
		1: "1110",
		2: "1230",
		3: "3100",
	}}
	return NewService(repo, resolver, finance.DefaultClassificationTable(), nil, nil)
}

func intPtr(v int64) *int64 { return &v }

func asOf() time.Time {
	return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func TestCreateRejectsZeroAmount(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.Create(context.Background(), Item{Amount: decimal.Zero, AsOfDate: asOf()})
	assert.ErrorIs(t, err, ledgershared.ErrValidation)
}

func TestCreateAllowsUnlinkedItem(t *testing.T) {
	svc := newTestService(newMockRepository())

	created, err := svc.Create(context.Background(), Item{
		Amount:   decimal.NewFromInt(500_000),
		AsOfDate: asOf(),
		Note:     "petty cash",
	})
	require.NoError(t, err)
	assert.Nil(t, created.AccountID)
}

func TestCreateRejectsUnknownAccount(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.Create(context.Background(), Item{
		AccountID: intPtr(99),
		Amount:    decimal.NewFromInt(1000),
		AsOfDate:  asOf(),
	})
	assert.ErrorIs(t, err, ledgershared.ErrValidation)
}

func TestContraAssetMustBePositiveMagnitude(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.Create(context.Background(), Item{
		AccountID: intPtr(2),
		Amount:    decimal.NewFromInt(-9_000_000),
		AsOfDate:  asOf(),
	})
	assert.ErrorIs(t, err, ledgershared.ErrValidation)

	created, err := svc.Create(context.Background(), Item{
		AccountID: intPtr(2),
		Amount:    decimal.NewFromInt(9_000_000),
		AsOfDate:  asOf(),
	})
	require.NoError(t, err)
	assert.True(t, created.Amount.IsPositive())
}

func TestNegativeReservedForContraAssets(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.Create(context.Background(), Item{
		AccountID: intPtr(1),
		Amount:    decimal.NewFromInt(-100),
		AsOfDate:  asOf(),
	})
	assert.ErrorIs(t, err, ledgershared.ErrValidation)
}

func TestReplaceForDateSwapsWholeSet(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), Item{
		AccountID: intPtr(1),
		Amount:    decimal.NewFromInt(10_000_000),
		AsOfDate:  asOf(),
	})
	require.NoError(t, err)

	saved, err := svc.ReplaceForDate(context.Background(), asOf(), []Item{
		{AccountID: intPtr(1), Amount: decimal.NewFromInt(12_000_000)},
		{AccountID: intPtr(3), Amount: decimal.NewFromInt(50_000_000)},
	})
	require.NoError(t, err)
	assert.Len(t, saved, 2)
	assert.Len(t, repo.records, 2)
}

func TestReplaceForDateValidatesEveryItem(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	_, err := svc.ReplaceForDate(context.Background(), asOf(), []Item{
		{AccountID: intPtr(1), Amount: decimal.NewFromInt(12_000_000)},
		{AccountID: intPtr(2), Amount: decimal.NewFromInt(-1)},
	})
	assert.ErrorIs(t, err, ledgershared.ErrValidation)
	assert.Empty(t, repo.records)
}
