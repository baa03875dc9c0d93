package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/xempie/trade-sub002/internal/watchlist"
)

// WatchlistRepository interface that PostgresWatchlistRepo must implement
type WatchlistRepository interface {
	Save(ctx context.Context, item *watchlist.Item) error
	GetActive(ctx context.Context, limit int) ([]*watchlist.Item, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	MarkTriggered(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type PostgresWatchlistRepo struct {
	DB *sqlx.DB
}

func NewPostgresWatchlistRepo(db *sqlx.DB) *PostgresWatchlistRepo {
	return &PostgresWatchlistRepo{DB: db}
}

// Save creates a new watchlist item
func (r *PostgresWatchlistRepo) Save(ctx context.Context, item *watchlist.Item) error {
	query := `
		INSERT INTO watchlist (
			symbol, entry_price, entry_type, direction, margin_amount,
			percentage, initial_price, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		item.Symbol, item.EntryPrice, item.EntryType, item.Direction,
		item.MarginAmount, item.Percentage, item.InitialPrice, watchlist.StatusActive,
	).Scan(&item.ID)
}

// GetActive gets active items, newest first. A non-positive limit returns
// every active row; the price monitor scans the full list.
func (r *PostgresWatchlistRepo) GetActive(ctx context.Context, limit int) ([]*watchlist.Item, error) {
	query, args := activeItemsQuery(limit)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*watchlist.Item
	for rows.Next() {
		item := &watchlist.Item{}
		if err := rows.Scan(
			&item.ID, &item.Symbol, &item.EntryPrice, &item.EntryType,
			&item.Direction, &item.MarginAmount, &item.Percentage,
			&item.InitialPrice, &item.Status, &item.TriggeredAt, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func activeItemsQuery(limit int) (string, []interface{}) {
	query := `
		SELECT id, symbol, entry_price, entry_type, direction, margin_amount,
		       percentage, initial_price, status, triggered_at, created_at
		FROM watchlist
		WHERE status = $1
		ORDER BY created_at DESC
	`
	args := []interface{}{watchlist.StatusActive}
	if limit > 0 {
		query += `		LIMIT $2
`
		args = append(args, limit)
	}
	return query, args
}

// UpdateStatus sets the item status; triggered_at is cleared unless the
// new status is triggered
func (r *PostgresWatchlistRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if status == watchlist.StatusTriggered {
		return r.MarkTriggered(ctx, id)
	}
	_, err := r.DB.ExecContext(ctx, `
		UPDATE watchlist SET status = $1, triggered_at = NULL WHERE id = $2
	`, status, id)
	return err
}

// MarkTriggered flips the item to its terminal triggered state
func (r *PostgresWatchlistRepo) MarkTriggered(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE watchlist SET status = $1, triggered_at = NOW() WHERE id = $2
	`, watchlist.StatusTriggered, id)
	return err
}

// Delete removes an item
func (r *PostgresWatchlistRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM watchlist WHERE id = $1`, id)
	return err
}
