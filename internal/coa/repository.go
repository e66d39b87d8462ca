package coa

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	ledgershared "github.com/atlas-ops/atlas-erp/internal/ledger/shared"
	"github.com/atlas-ops/atlas-erp/internal/shared"
)

type Repository interface {
	List(ctx context.Context, includeInactive bool) ([]Account, error)
	Get(ctx context.Context, id int64) (Account, error)
	CodeForAccount(ctx context.Context, id int64) (string, error)
	Create(ctx context.Context, acc Account) (Account, error)
	Update(ctx context.Context, id int64, acc Account) error
	SetActive(ctx context.Context, id int64, active bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, includeInactive bool) ([]Account, error) {
	query := `SELECT id, code, name, is_active, created_at, updated_at FROM chart_of_accounts`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY code`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, code, name, is_active, created_at, updated_at
		FROM chart_of_accounts WHERE id = $1`, id).
		Scan(&a.ID, &a.Code, &a.Name, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) CodeForAccount(ctx context.Context, id int64) (string, error) {
	var code string
	err := r.pool.QueryRow(ctx, `SELECT code FROM chart_of_accounts WHERE id = $1`, id).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return code, nil
}

func (r *repository) Create(ctx context.Context, acc Account) (Account, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chart_of_accounts (code, name, is_active)
		VALUES ($1, $2, true)
		RETURNING id, is_active, created_at, updated_at`,
		acc.Code, acc.Name).
		Scan(&acc.ID, &acc.IsActive, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return Account{}, ledgershared.MapPgError(err)
	}
	return acc, nil
}

func (r *repository) Update(ctx context.Context, id int64, acc Account) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE chart_of_accounts SET code = $1, name = $2, updated_at = now()
		WHERE id = $3`, acc.Code, acc.Name, id)
	if err != nil {
		return ledgershared.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE chart_of_accounts SET is_active = $1, updated_at = now()
		WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
