package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/xempie/trade-sub002/internal/order"
)

// OrderRepository interface that PostgresOrderRepo must implement
type OrderRepository interface {
	Save(ctx context.Context, o *order.Order) error
	GetPendingWithExchangeID(ctx context.Context) ([]*order.Order, error)
	MarkFilled(ctx context.Context, id int64, fillPrice float64, fillTime time.Time) error
	MarkCancelled(ctx context.Context, id int64) error
}

type PostgresOrderRepo struct {
	DB *sqlx.DB
}

func NewPostgresOrderRepo(db *sqlx.DB) *PostgresOrderRepo {
	return &PostgresOrderRepo{DB: db}
}

const orderColumns = `
	id, signal_id, symbol, side, position_side, type, entry_level,
	quantity, price, leverage, exchange_order_id, client_order_id,
	status, fill_price, fill_time, created_at, updated_at
`

// Save creates a new order row
func (r *PostgresOrderRepo) Save(ctx context.Context, o *order.Order) error {
	query := `
		INSERT INTO orders (
			signal_id, symbol, side, position_side, type, entry_level,
			quantity, price, leverage, exchange_order_id, client_order_id,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		o.SignalID, o.Symbol, o.Side, o.PositionSide, o.Type, o.EntryLevel,
		o.Quantity, o.Price, o.Leverage, o.ExchangeOrderID, o.ClientOrderID,
		o.Status,
	).Scan(&o.ID)
}

// GetPendingWithExchangeID gets orders awaiting an exchange status update
func (r *PostgresOrderRepo) GetPendingWithExchangeID(ctx context.Context) ([]*order.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status IN ($1, $2) AND exchange_order_id IS NOT NULL
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, order.StatusNew, order.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o := &order.Order{}
		if err := rows.Scan(
			&o.ID, &o.SignalID, &o.Symbol, &o.Side, &o.PositionSide, &o.Type, &o.EntryLevel,
			&o.Quantity, &o.Price, &o.Leverage, &o.ExchangeOrderID, &o.ClientOrderID,
			&o.Status, &o.FillPrice, &o.FillTime, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// MarkFilled records the fill and moves the order to its terminal state
func (r *PostgresOrderRepo) MarkFilled(ctx context.Context, id int64, fillPrice float64, fillTime time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, fill_price = $2, fill_time = $3, updated_at = NOW()
		WHERE id = $4
	`, order.StatusFilled, fillPrice, fillTime, id)
	return err
}

// MarkCancelled moves the order to CANCELLED
func (r *PostgresOrderRepo) MarkCancelled(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
	`, order.StatusCancelled, id)
	return err
}
