package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/xempie/trade-sub002/internal/position"
)

// PositionRepository interface that PostgresPositionRepo must implement
type PositionRepository interface {
	Save(ctx context.Context, p *position.Position) error
	GetOpen(ctx context.Context) ([]*position.Position, error)
	HasOpenForSignal(ctx context.Context, signalID int64, side string) (bool, error)
	UpdatePnL(ctx context.Context, id int64, pnl float64) error
	MarkTargetNotified(ctx context.Context, id int64) error
	Close(ctx context.Context, id int64, closePrice float64, reason string) error
}

type PostgresPositionRepo struct {
	DB *sqlx.DB
}

func NewPostgresPositionRepo(db *sqlx.DB) *PostgresPositionRepo {
	return &PostgresPositionRepo{DB: db}
}

const positionColumns = `
	id, signal_id, symbol, side, size, entry_price, leverage, margin_used,
	unrealized_pnl, status, close_reason, close_price, closed_at,
	target_notified_at, created_at, updated_at
`

// Save creates a new position row
func (r *PostgresPositionRepo) Save(ctx context.Context, p *position.Position) error {
	query := `
		INSERT INTO positions (
			signal_id, symbol, side, size, entry_price, leverage, margin_used,
			unrealized_pnl, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		p.SignalID, p.Symbol, p.Side, p.Size, p.EntryPrice, p.Leverage,
		p.MarginUsed, p.UnrealizedPnL, p.Status,
	).Scan(&p.ID)
}

// GetOpen gets all open positions
func (r *PostgresPositionRepo) GetOpen(ctx context.Context) ([]*position.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE status = $1 ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query, position.StatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []*position.Position
	for rows.Next() {
		p := &position.Position{}
		if err := rows.Scan(
			&p.ID, &p.SignalID, &p.Symbol, &p.Side, &p.Size, &p.EntryPrice,
			&p.Leverage, &p.MarginUsed, &p.UnrealizedPnL, &p.Status,
			&p.CloseReason, &p.ClosePrice, &p.ClosedAt, &p.TargetNotifiedAt,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// HasOpenForSignal is the pre-check that keeps one OPEN position per
// signal and side. Not a schema constraint; concurrent writers can race.
func (r *PostgresPositionRepo) HasOpenForSignal(ctx context.Context, signalID int64, side string) (bool, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		SELECT id FROM positions
		WHERE signal_id = $1 AND side = $2 AND status = $3
		LIMIT 1
	`, signalID, side, position.StatusOpen).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdatePnL refreshes the unrealized P&L for one position
func (r *PostgresPositionRepo) UpdatePnL(ctx context.Context, id int64, pnl float64) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE positions SET unrealized_pnl = $1, updated_at = NOW() WHERE id = $2
	`, pnl, id)
	return err
}

// MarkTargetNotified records that the target alert for this position went
// out; the monitor sends it once per position
func (r *PostgresPositionRepo) MarkTargetNotified(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE positions SET target_notified_at = NOW(), updated_at = NOW() WHERE id = $1
	`, id)
	return err
}

// Close marks a position closed with the price and reason
func (r *PostgresPositionRepo) Close(ctx context.Context, id int64, closePrice float64, reason string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE positions
		SET status = $1, close_price = $2, close_reason = $3, closed_at = NOW(), updated_at = NOW()
		WHERE id = $4
	`, position.StatusClosed, closePrice, reason, id)
	return err
}
