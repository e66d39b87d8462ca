package authz

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-ops/atlas-erp/internal/shared"
)

// RoleRepository resolves the stored role for a user.
type RoleRepository interface {
	RoleForUser(ctx context.Context, userID int64) (Role, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository wires the Postgres-backed role lookup.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) RoleForUser(ctx context.Context, userID int64) (Role, error) {
	var role string
	err := r.pool.QueryRow(ctx,
		`SELECT role FROM users WHERE id = $1 AND is_active`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return Role(strings.ToLower(strings.TrimSpace(role))), nil
}

// Service resolves a caller's capability set from policy and the role store.
// It is consulted once per request, before any data access runs.
type Service struct {
	repo   RoleRepository
	policy Policy
}

// NewService wires a RoleRepository with a policy table.
func NewService(repo RoleRepository, policy Policy) *Service {
	return &Service{repo: repo, policy: policy}
}

// CapabilitiesFor returns the capability set granted to a user.
func (s *Service) CapabilitiesFor(ctx context.Context, userID int64) (CapabilitySet, error) {
	role, err := s.repo.RoleForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.policy.Resolve(role), nil
}
