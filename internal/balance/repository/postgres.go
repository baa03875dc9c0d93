package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/xempie/trade-sub002/internal/balance"
)

// BalanceRepository interface that PostgresBalanceRepo must implement
type BalanceRepository interface {
	GetCurrent(ctx context.Context) (*balance.Snapshot, error)
	Upsert(ctx context.Context, s *balance.Snapshot) error
}

type PostgresBalanceRepo struct {
	DB *sqlx.DB
}

func NewPostgresBalanceRepo(db *sqlx.DB) *PostgresBalanceRepo {
	return &PostgresBalanceRepo{DB: db}
}

// GetCurrent returns the single current snapshot, or nil if none exists yet
func (r *PostgresBalanceRepo) GetCurrent(ctx context.Context) (*balance.Snapshot, error) {
	s := &balance.Snapshot{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, asset, total_balance, available_margin, used_margin,
		       unrealized_profit, updated_at
		FROM account_balance
		ORDER BY id
		LIMIT 1
	`).Scan(&s.ID, &s.Asset, &s.TotalBalance, &s.AvailableMargin,
		&s.UsedMargin, &s.UnrealizedProfit, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Upsert updates the current row in place, inserting it on first run
func (r *PostgresBalanceRepo) Upsert(ctx context.Context, s *balance.Snapshot) error {
	if s.ID > 0 {
		_, err := r.DB.ExecContext(ctx, `
			UPDATE account_balance
			SET asset = $1, total_balance = $2, available_margin = $3,
			    used_margin = $4, unrealized_profit = $5, updated_at = NOW()
			WHERE id = $6
		`, s.Asset, s.TotalBalance, s.AvailableMargin, s.UsedMargin,
			s.UnrealizedProfit, s.ID)
		return err
	}
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO account_balance (
			asset, total_balance, available_margin, used_margin,
			unrealized_profit, updated_at
		) VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id
	`, s.Asset, s.TotalBalance, s.AvailableMargin, s.UsedMargin,
		s.UnrealizedProfit).Scan(&s.ID)
}
