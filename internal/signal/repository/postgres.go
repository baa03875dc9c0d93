package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/xempie/trade-sub002/internal/signal"
)

// SignalRepository interface that PostgresSignalRepo must implement
type SignalRepository interface {
	Save(ctx context.Context, s *signal.Signal) error
	GetByID(ctx context.Context, id int64) (*signal.Signal, error)
	GetActive(ctx context.Context) ([]*signal.Signal, error)
	Archive(ctx context.Context, id int64) error
}

type PostgresSignalRepo struct {
	DB *sqlx.DB
}

func NewPostgresSignalRepo(db *sqlx.DB) *PostgresSignalRepo {
	return &PostgresSignalRepo{DB: db}
}

const signalColumns = `
	id, symbol, signal_type, entry_market_price, entry_2, entry_3,
	take_profit_1, take_profit_2, take_profit_3, take_profit_4, take_profit_5,
	stop_loss, leverage, source_name, external_signal_id,
	confidence_score, notes, risk_reward_ratio, auto_created, status, created_at
`

// Save creates a new signal in the database
func (r *PostgresSignalRepo) Save(ctx context.Context, s *signal.Signal) error {
	query := `
		INSERT INTO signals (
			symbol, signal_type, entry_market_price, entry_2, entry_3,
			take_profit_1, take_profit_2, take_profit_3, take_profit_4, take_profit_5,
			stop_loss, leverage, source_name, external_signal_id,
			confidence_score, notes, risk_reward_ratio, auto_created, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW())
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		s.Symbol, s.Side, s.EntryMarketPrice, s.Entry2, s.Entry3,
		s.TakeProfit1, s.TakeProfit2, s.TakeProfit3, s.TakeProfit4, s.TakeProfit5,
		s.StopLoss, s.Leverage, s.SourceName, s.ExternalSignalID,
		s.ConfidenceScore, s.Notes, s.RiskRewardRatio, s.AutoCreated, s.Status,
	).Scan(&s.ID)
}

// GetByID fetches one signal
func (r *PostgresSignalRepo) GetByID(ctx context.Context, id int64) (*signal.Signal, error) {
	query := `SELECT ` + signalColumns + ` FROM signals WHERE id = $1`
	row := r.DB.QueryRowContext(ctx, query, id)

	s := &signal.Signal{}
	if err := row.Scan(
		&s.ID, &s.Symbol, &s.Side, &s.EntryMarketPrice, &s.Entry2, &s.Entry3,
		&s.TakeProfit1, &s.TakeProfit2, &s.TakeProfit3, &s.TakeProfit4, &s.TakeProfit5,
		&s.StopLoss, &s.Leverage, &s.SourceName, &s.ExternalSignalID,
		&s.ConfidenceScore, &s.Notes, &s.RiskRewardRatio, &s.AutoCreated, &s.Status, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return s, nil
}

// GetActive gets all active signals, newest first
func (r *PostgresSignalRepo) GetActive(ctx context.Context) ([]*signal.Signal, error) {
	query := `SELECT ` + signalColumns + ` FROM signals WHERE status = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, signal.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []*signal.Signal
	for rows.Next() {
		s := &signal.Signal{}
		if err := rows.Scan(
			&s.ID, &s.Symbol, &s.Side, &s.EntryMarketPrice, &s.Entry2, &s.Entry3,
			&s.TakeProfit1, &s.TakeProfit2, &s.TakeProfit3, &s.TakeProfit4, &s.TakeProfit5,
			&s.StopLoss, &s.Leverage, &s.SourceName, &s.ExternalSignalID,
			&s.ConfidenceScore, &s.Notes, &s.RiskRewardRatio, &s.AutoCreated, &s.Status, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		signals = append(signals, s)
	}
	return signals, nil
}

// Archive marks a signal as no longer active
func (r *PostgresSignalRepo) Archive(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE signals SET status = $1 WHERE id = $2`,
		signal.StatusArchived, id)
	return err
}
