package expense

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	ledgershared "github.com/atlas-ops/atlas-erp/internal/ledger/shared"
)

type Repository interface {
	List(ctx context.Context, filters ledgershared.ListFilters) ([]Expense, int, error)
	Get(ctx context.Context, id int64) (Expense, error)
	Create(ctx context.Context, rec Expense) (Expense, error)
	Update(ctx context.Context, id int64, rec Expense) error
	MarkPaid(ctx context.Context, id int64, paidAt time.Time) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const expenseColumns = `id, project_id, amount, category, COALESCE(sub_category, ''), paid_at, created_at, updated_at, status, COALESCE(description, '')`

func (r *repository) List(ctx context.Context, filters ledgershared.ListFilters) ([]Expense, int, error) {
	filters = filters.Normalize()

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM expenses WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Status != "" {
		argCount++
		clause := ` AND status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Status)
	}
	if filters.Search != "" {
		argCount++
		clause := ` AND (category ILIKE $` + strconv.Itoa(argCount) + ` OR sub_category ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Month != "" {
		argCount++
		clause := ` AND to_char(created_at, 'YYYY-MM') = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Month)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	argCount++
	query += ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(argCount)
	args = append(args, filters.Limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []Expense
	for rows.Next() {
		var rec Expense
		if err := scanExpense(rows, &rec); err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Expense, error) {
	var rec Expense
	row := r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id)
	if err := scanExpense(row, &rec); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Expense{}, ledgershared.ErrNotFound
		}
		return Expense{}, err
	}
	return rec, nil
}

func (r *repository) Create(ctx context.Context, rec Expense) (Expense, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO expenses (project_id, amount, category, sub_category, status, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		rec.ProjectID, rec.Amount, rec.Category, rec.SubCategory, rec.Status, rec.Description).
		Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return Expense{}, ledgershared.MapPgError(err)
	}
	return rec, nil
}

func (r *repository) Update(ctx context.Context, id int64, rec Expense) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE expenses
		SET project_id = $1, amount = $2, category = $3, sub_category = $4, status = $5, description = $6, updated_at = now()
		WHERE id = $7`,
		rec.ProjectID, rec.Amount, rec.Category, rec.SubCategory, rec.Status, rec.Description, id)
	if err != nil {
		return ledgershared.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ledgershared.ErrNotFound
	}
	return nil
}

func (r *repository) MarkPaid(ctx context.Context, id int64, paidAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE expenses SET status = 'paid', paid_at = $1, updated_at = now()
		WHERE id = $2 AND status = 'pending'`, paidAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledgershared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledgershared.ErrNotFound
	}
	return nil
}

func scanExpense(row pgx.Row, rec *Expense) error {
	return row.Scan(&rec.ID, &rec.ProjectID, &rec.Amount, &rec.Category, &rec.SubCategory,
		&rec.PaidAt, &rec.CreatedAt, &rec.UpdatedAt, &rec.Status, &rec.Description)
}
