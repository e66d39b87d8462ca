package payroll

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-ops/atlas-erp/internal/finance"
	ledgershared "github.com/atlas-ops/atlas-erp/internal/ledger/shared"
)

type Repository interface {
	List(ctx context.Context, filters ledgershared.ListFilters) ([]Run, int, error)
	Get(ctx context.Context, id int64) (Run, error)
	Create(ctx context.Context, run Run) (Run, error)
	UpdateAmount(ctx context.Context, id int64, amount Run) error
	SetStatus(ctx context.Context, id int64, status finance.PayrollStatus, paidAt *time.Time) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const runColumns = `id, employee_id, amount, month, status, paid_at, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ledgershared.ListFilters) ([]Run, int, error) {
	filters = filters.Normalize()

	query := `SELECT ` + runColumns + ` FROM payrolls WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM payrolls WHERE 1=1`
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
		clause := ` AND month = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Month)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	argCount++
	query += ` ORDER BY month DESC, employee_id LIMIT $` + strconv.Itoa(argCount)
	args = append(args, filters.Limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := scanRun(rows, &run); err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Run, error) {
	var run Run
	row := r.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM payrolls WHERE id = $1`, id)
	if err := scanRun(row, &run); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Run{}, ledgershared.ErrNotFound
		}
		return Run{}, err
	}
	return run, nil
}

// Create inserts a draft run; the (employee_id, month) unique constraint
// rejects double runs for the same month.
func (r *repository) Create(ctx context.Context, run Run) (Run, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO payrolls (employee_id, amount, month, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		run.EmployeeID, run.Amount, run.Month, run.Status).
		Scan(&run.ID, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return Run{}, ledgershared.MapPgError(err)
	}
	return run, nil
}

func (r *repository) UpdateAmount(ctx context.Context, id int64, run Run) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payrolls SET amount = $1, updated_at = now()
		WHERE id = $2 AND status = 'draft'`, run.Amount, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledgershared.ErrNotFound
	}
	return nil
}

func (r *repository) SetStatus(ctx context.Context, id int64, status finance.PayrollStatus, paidAt *time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payrolls SET status = $1, paid_at = $2, updated_at = now()
		WHERE id = $3`, status, paidAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledgershared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payrolls WHERE id = $1 AND status = 'draft'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledgershared.ErrNotFound
	}
	return nil
}

func scanRun(row pgx.Row, run *Run) error {
	return row.Scan(&run.ID, &run.EmployeeID, &run.Amount, &run.Month, &run.Status,
		&run.PaidAt, &run.CreatedAt, &run.UpdatedAt)
}
