package finance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository exposes the eight ledger reads the aggregation needs. Each read
// is independent so the service can fan them out concurrently.
type Repository interface {
	ManualItems(ctx context.Context, asOf time.Time) ([]ManualBalanceItem, error)
	ActiveAccounts(ctx context.Context) ([]ChartOfAccount, error)
	ReceivedIncome(ctx context.Context, from, to time.Time) ([]IncomeRecord, error)
	PaidExpenses(ctx context.Context, from, to time.Time) ([]ExpenseRecord, error)
	PaidPayroll(ctx context.Context, throughMonth string) ([]PayrollRecord, error)
	PaidPayrollForMonth(ctx context.Context, month string) ([]PayrollRecord, error)
	PendingIncome(ctx context.Context, asOf time.Time) ([]IncomeRecord, error)
	PendingExpenses(ctx context.Context, asOf time.Time) ([]ExpenseRecord, error)
	PendingPayroll(ctx context.Context, throughMonth string) ([]PayrollRecord, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires the Postgres-backed ledger reader.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ManualItems(ctx context.Context, asOf time.Time) ([]ManualBalanceItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, amount, as_of_date, COALESCE(note, '')
		FROM manual_balance_items
		WHERE as_of_date <= $1
		ORDER BY as_of_date, id`, asOf)
	if err != nil {
		return nil, err
	}
	return collectManualItems(rows)
}

func (r *repository) ActiveAccounts(ctx context.Context) ([]ChartOfAccount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, code, name, is_active
		FROM chart_of_accounts
		WHERE is_active
		ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []ChartOfAccount
	for rows.Next() {
		var a ChartOfAccount
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.IsActive); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) ReceivedIncome(ctx context.Context, from, to time.Time) ([]IncomeRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, amount, date, status
		FROM incomes
		WHERE status = $1 AND date >= $2 AND date <= $3
		ORDER BY date, id`, IncomeStatusReceived, from, to)
	if err != nil {
		return nil, err
	}
	return collectIncome(rows)
}

func (r *repository) PendingIncome(ctx context.Context, asOf time.Time) ([]IncomeRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, amount, date, status
		FROM incomes
		WHERE status = $1 AND date <= $2
		ORDER BY date, id`, IncomeStatusPending, asOf)
	if err != nil {
		return nil, err
	}
	return collectIncome(rows)
}

func (r *repository) PaidExpenses(ctx context.Context, from, to time.Time) ([]ExpenseRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, amount, category, COALESCE(sub_category, ''), paid_at, created_at, status
		FROM expenses
		WHERE status = $1 AND paid_at IS NOT NULL AND paid_at >= $2 AND paid_at <= $3
		ORDER BY paid_at, id`, ExpenseStatusPaid, from, to)
	if err != nil {
		return nil, err
	}
	return collectExpenses(rows)
}

func (r *repository) PendingExpenses(ctx context.Context, asOf time.Time) ([]ExpenseRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, amount, category, COALESCE(sub_category, ''), paid_at, created_at, status
		FROM expenses
		WHERE status = $1 AND created_at <= $2
		ORDER BY created_at, id`, ExpenseStatusPending, asOf)
	if err != nil {
		return nil, err
	}
	return collectExpenses(rows)
}

func (r *repository) PaidPayroll(ctx context.Context, throughMonth string) ([]PayrollRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, amount, month, status
		FROM payrolls
		WHERE status = $1 AND month <= $2
		ORDER BY month, id`, PayrollStatusPaid, throughMonth)
	if err != nil {
		return nil, err
	}
	return collectPayroll(rows)
}

func (r *repository) PaidPayrollForMonth(ctx context.Context, month string) ([]PayrollRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, amount, month, status
		FROM payrolls
		WHERE status = $1 AND month = $2
		ORDER BY id`, PayrollStatusPaid, month)
	if err != nil {
		return nil, err
	}
	return collectPayroll(rows)
}

func (r *repository) PendingPayroll(ctx context.Context, throughMonth string) ([]PayrollRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, amount, month, status
		FROM payrolls
		WHERE status = ANY($1) AND month <= $2
		ORDER BY month, id`, []PayrollStatus{PayrollStatusDraft, PayrollStatusFinal}, throughMonth)
	if err != nil {
		return nil, err
	}
	return collectPayroll(rows)
}

func collectManualItems(rows pgx.Rows) ([]ManualBalanceItem, error) {
	defer rows.Close()
	var items []ManualBalanceItem
	for rows.Next() {
		var item ManualBalanceItem
		if err := rows.Scan(&item.ID, &item.AccountID, &item.Amount, &item.AsOfDate, &item.Note); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func collectIncome(rows pgx.Rows) ([]IncomeRecord, error) {
	defer rows.Close()
	var records []IncomeRecord
	for rows.Next() {
		var rec IncomeRecord
		if err := rows.Scan(&rec.ID, &rec.Amount, &rec.Date, &rec.Status); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func collectExpenses(rows pgx.Rows) ([]ExpenseRecord, error) {
	defer rows.Close()
	var records []ExpenseRecord
	for rows.Next() {
		var rec ExpenseRecord
		if err := rows.Scan(&rec.ID, &rec.Amount, &rec.Category, &rec.SubCategory, &rec.PaidAt, &rec.CreatedAt, &rec.Status); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func collectPayroll(rows pgx.Rows) ([]PayrollRecord, error) {
	defer rows.Close()
	var records []PayrollRecord
	for rows.Next() {
		var rec PayrollRecord
		if err := rows.Scan(&rec.ID, &rec.Amount, &rec.Month, &rec.Status); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
