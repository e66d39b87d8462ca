package balances

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	ledgershared "github.com/atlas-ops/atlas-erp/internal/ledger/shared"
	"github.com/atlas-ops/atlas-erp/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, filters ledgershared.ListFilters) ([]Item, int, error)
	Get(ctx context.Context, id int64) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id int64, item Item) error
	Delete(ctx context.Context, id int64) error
	ReplaceForDate(ctx context.Context, asOf time.Time, items []Item) ([]Item, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const itemColumns = `id, account_id, amount, as_of_date, COALESCE(note, ''), created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ledgershared.ListFilters) ([]Item, int, error) {
	filters = filters.Normalize()

	query := `SELECT ` + itemColumns + ` FROM manual_balance_items WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM manual_balance_items WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Month != "" {
		argCount++
		clause := ` AND to_char(as_of_date, 'YYYY-MM') = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Month)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	argCount++
	query += ` ORDER BY as_of_date DESC, id DESC LIMIT $` + strconv.Itoa(argCount)
	args = append(args, filters.Limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := scanItem(rows, &item); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Item, error) {
	var item Item
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM manual_balance_items WHERE id = $1`, id)
	if err := scanItem(row, &item); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ledgershared.ErrNotFound
		}
		return Item{}, err
	}
	return item, nil
}

// Create inserts the adjustment; the (account_id, as_of_date) unique
// constraint keeps one entry per account per date.
func (r *repository) Create(ctx context.Context, item Item) (Item, error) {
	if item.AsOfDate.IsZero() {
		item.AsOfDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO manual_balance_items (account_id, amount, as_of_date, note)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		item.AccountID, item.Amount, item.AsOfDate, item.Note).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Item{}, ledgershared.MapPgError(err)
	}
	return item, nil
}

func (r *repository) Update(ctx context.Context, id int64, item Item) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE manual_balance_items
		SET account_id = $1, amount = $2, as_of_date = $3, note = $4, updated_at = now()
		WHERE id = $5`,
		item.AccountID, item.Amount, item.AsOfDate, item.Note, id)
	if err != nil {
		return ledgershared.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ledgershared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM manual_balance_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledgershared.ErrNotFound
	}
	return nil
}

// ReplaceForDate swaps out the full set of adjustments for one date. Month-end
// re-entry replaces everything at once, so partial writes must not survive.
func (r *repository) ReplaceForDate(ctx context.Context, asOf time.Time, items []Item) ([]Item, error) {
	saved := make([]Item, 0, len(items))
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM manual_balance_items WHERE as_of_date = $1`, asOf); err != nil {
			return err
		}
		for _, item := range items {
			item.AsOfDate = asOf
			err := tx.QueryRow(ctx, `
				INSERT INTO manual_balance_items (account_id, amount, as_of_date, note)
				VALUES ($1, $2, $3, $4)
				RETURNING id, created_at, updated_at`,
				item.AccountID, item.Amount, item.AsOfDate, item.Note).
				Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
			if err != nil {
				return ledgershared.MapPgError(err)
			}
			saved = append(saved, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func scanItem(row pgx.Row, item *Item) error {
	return row.Scan(&item.ID, &item.AccountID, &item.Amount, &item.AsOfDate, &item.Note,
		&item.CreatedAt, &item.UpdatedAt)
}
