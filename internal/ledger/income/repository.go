package income

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	ledgershared "github.com/atlas-ops/atlas-erp/internal/ledger/shared"
)

type Repository interface {
	List(ctx context.Context, filters ledgershared.ListFilters) ([]Income, int, error)
	Get(ctx context.Context, id int64) (Income, error)
	Create(ctx context.Context, rec Income) (Income, error)
	Update(ctx context.Context, id int64, rec Income) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters ledgershared.ListFilters) ([]Income, int, error) {
	filters = filters.Normalize()

	query := `SELECT id, client_id, project_id, amount, date, status, COALESCE(description, ''), created_at, updated_at FROM incomes WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM incomes WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Status != "" {
		argCount++
		clause := ` AND status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Status)
	}
	if filters.Month != "" {
		argCount++
		clause := ` AND to_char(date, 'YYYY-MM') = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Month)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	argCount++
	query += ` ORDER BY date DESC, id DESC LIMIT $` + strconv.Itoa(argCount)
	args = append(args, filters.Limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []Income
	for rows.Next() {
		var rec Income
		if err := rows.Scan(&rec.ID, &rec.ClientID, &rec.ProjectID, &rec.Amount, &rec.Date, &rec.Status, &rec.Description, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Income, error) {
	var rec Income
	err := r.pool.QueryRow(ctx, `
		SELECT id, client_id, project_id, amount, date, status, COALESCE(description, ''), created_at, updated_at
		FROM incomes WHERE id = $1`, id).
		Scan(&rec.ID, &rec.ClientID, &rec.ProjectID, &rec.Amount, &rec.Date, &rec.Status, &rec.Description, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Income{}, ledgershared.ErrNotFound
		}
		return Income{}, err
	}
	return rec, nil
}

func (r *repository) Create(ctx context.Context, rec Income) (Income, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO incomes (client_id, project_id, amount, date, status, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		rec.ClientID, rec.ProjectID, rec.Amount, rec.Date, rec.Status, rec.Description).
		Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return Income{}, ledgershared.MapPgError(err)
	}
	return rec, nil
}

func (r *repository) Update(ctx context.Context, id int64, rec Income) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE incomes
		SET client_id = $1, project_id = $2, amount = $3, date = $4, status = $5, description = $6, updated_at = now()
		WHERE id = $7`,
		rec.ClientID, rec.ProjectID, rec.Amount, rec.Date, rec.Status, rec.Description, id)
	if err != nil {
		return ledgershared.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ledgershared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM incomes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledgershared.ErrNotFound
	}
	return nil
}
