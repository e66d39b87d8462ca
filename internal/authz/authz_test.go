package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-ops/atlas-erp/internal/shared"
)

type mockRoleRepository struct {
	roles map[int64]Role
}

func (m mockRoleRepository) RoleForUser(ctx context.Context, userID int64) (Role, error) {
	role, ok := m.roles[userID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return role, nil
}

func newTestService() *Service {
	return NewService(mockRoleRepository{roles: map[int64]Role{
		1: RoleOwner,
		2: RoleFinance,
		3: RoleHR,
		4: RoleStaff,
	}}, DefaultPolicy())
}

func TestDefaultPolicyGrants(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		role    Role
		granted []Capability
		denied  []Capability
	}{
		{RoleOwner, []Capability{CapFinanceRead, CapLedgerWrite, CapPayrollWrite, CapCoaManage}, nil},
		{RoleFinance, []Capability{CapFinanceRead, CapLedgerWrite, CapCoaManage}, []Capability{CapPayrollRead, CapPayrollWrite}},
		{RoleHR, []Capability{CapPayrollRead, CapPayrollWrite}, []Capability{CapFinanceRead, CapLedgerWrite}},
		{RoleStaff, []Capability{CapLedgerRead}, []Capability{CapLedgerWrite, CapFinanceRead, CapCoaManage}},
	}

	for _, tc := range tests {
		set := policy.Resolve(tc.role)
		for _, cap := range tc.granted {
			assert.True(t, set.Has(cap), "role %s should hold %s", tc.role, cap)
		}
		for _, cap := range tc.denied {
			assert.False(t, set.Has(cap), "role %s should not hold %s", tc.role, cap)
		}
	}
}

func TestUnknownRoleResolvesEmpty(t *testing.T) {
	set := DefaultPolicy().Resolve(Role("contractor"))
	assert.Empty(t, set)
}

func TestCapabilitiesForUnknownUser(t *testing.T) {
	svc := newTestService()
	_, err := svc.CapabilitiesFor(context.Background(), 99)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func guardedRequest(t *testing.T, guard Middleware, cap Capability, userHeaderValue string) *httptest.ResponseRecorder {
	t.Helper()
	handler := guard.Require(cap)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		set, ok := CapabilitiesFromContext(r.Context())
		require.True(t, ok)
		require.True(t, set.Has(cap))
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if userHeaderValue != "" {
		req.Header.Set("X-Atlas-User", userHeaderValue)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestRequireAllowsGrantedCapability(t *testing.T) {
	guard := Middleware{Service: newTestService()}
	rr := guardedRequest(t, guard, CapFinanceRead, "2")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRequireRejectsMissingCapability(t *testing.T) {
	guard := Middleware{Service: newTestService()}
	rr := guardedRequest(t, guard, CapPayrollWrite, "4")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireRejectsMissingHeader(t *testing.T) {
	guard := Middleware{Service: newTestService()}
	rr := guardedRequest(t, guard, CapLedgerRead, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireRejectsMalformedHeader(t *testing.T) {
	guard := Middleware{Service: newTestService()}
	for _, value := range []string{"abc", "-1", "0"} {
		rr := guardedRequest(t, guard, CapLedgerRead, value)
		assert.Equal(t, http.StatusForbidden, rr.Code, "header %q", value)
	}
}

func TestRequireRejectsUnknownUser(t *testing.T) {
	guard := Middleware{Service: newTestService()}
	rr := guardedRequest(t, guard, CapLedgerRead, "42")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
