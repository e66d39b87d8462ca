package coa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgershared "github.com/atlas-ops/atlas-erp/internal/ledger/shared"
	"github.com/atlas-ops/atlas-erp/internal/shared"
)

type mockRepository struct {
	records map[int64]Account
	nextID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{records: make(map[int64]Account), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context, includeInactive bool) ([]Account, error) {
	out := make([]Account, 0, len(m.records))
	for _, acc := range m.records {
		if !includeInactive && !acc.IsActive {
			continue
		}
		out = append(out, acc)
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Account, error) {
	acc, ok := m.records[id]
	if !ok {
		return Account{}, shared.ErrNotFound
	}
	return acc, nil
}

func (m *mockRepository) CodeForAccount(ctx context.Context, id int64) (string, error) {
	acc, ok := m.records[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	return acc.Code, nil
}

func (m *mockRepository) Create(ctx context.Context, acc Account) (Account, error) {
	for _, existing := range m.records {
		if existing.Code == acc.Code {
			return Account{}, ledgershared.ErrDuplicate
		}
	}
	acc.ID = m.nextID
	acc.IsActive = true
	m.nextID++
	m.records[acc.ID] = acc
	return acc, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, acc Account) error {
	existing, ok := m.records[id]
	if !ok {
		return shared.ErrNotFound
	}
	existing.Code = acc.Code
	existing.Name = acc.Name
	m.records[id] = existing
	return nil
}

func (m *mockRepository) SetActive(ctx context.Context, id int64, active bool) error {
	existing, ok := m.records[id]
	if !ok {
		return shared.ErrNotFound
	}
	existing.IsActive = active
	m.records[id] = existing
	return nil
}

func TestCreateValidatesCode(t *testing.T) {
	svc := NewService(newMockRepository())

	for _, code := range []string{"", "111", "11100", "4100", "abcd", "0110"} {
		_, err := svc.Create(context.Background(), Account{Code: code, Name: "Kas"})
		assert.ErrorIs(t, err, ledgershared.ErrValidation, "code %q", code)
	}

	_, err := svc.Create(context.Background(), Account{Code: "1110", Name: "Kas dan Bank"})
	assert.NoError(t, err)
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), Account{Code: "1110", Name: "  "})
	assert.ErrorIs(t, err, ledgershared.ErrValidation)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), Account{Code: "1110", Name: "Kas dan Bank"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Account{Code: "1110", Name: "Kas"})
	assert.ErrorIs(t, err, ledgershared.ErrDuplicate)
}

func TestDeactivateKeepsAccountResolvable(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Account{Code: "1220", Name: "Kendaraan"})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), created.ID))

	active, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, active)

	code, err := repo.CodeForAccount(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "1220", code)

	require.NoError(t, svc.Activate(context.Background(), created.ID))
	active, err = svc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
