package jobs

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/xempie/trade-sub002/internal/balance"
	balancerepo "github.com/xempie/trade-sub002/internal/balance/repository"
	"github.com/xempie/trade-sub002/internal/bingx/entity"
	"github.com/xempie/trade-sub002/internal/telegram"
)

// BalanceExchange is the slice of the BingX client the balance job needs.
type BalanceExchange interface {
	GetBalance(ctx context.Context) (*entity.Balance, error)
}

// Notifier is satisfied by *telegram.Sender.
type Notifier interface {
	Send(ctx context.Context, msg telegram.Message) telegram.Result
	SendTyped(ctx context.Context, alertType string, msg telegram.Message) telegram.Result
}

// BalanceSync polls the account balance and alerts when the total moves by
// more than the configured percentage since the last stored snapshot.
type BalanceSync struct {
	Exchange  BalanceExchange
	Repo      balancerepo.BalanceRepository
	Notifier  Notifier
	Threshold float64 // percent
}

func NewBalanceSync(exchange BalanceExchange, repo balancerepo.BalanceRepository, notifier Notifier, threshold float64) *BalanceSync {
	if threshold <= 0 {
		threshold = 5.0
	}
	return &BalanceSync{Exchange: exchange, Repo: repo, Notifier: notifier, Threshold: threshold}
}

func (j *BalanceSync) Name() string            { return "balance-sync" }
func (j *BalanceSync) Interval() time.Duration { return 15 * time.Minute }

func (j *BalanceSync) Run(ctx context.Context) error {
	current, err := j.Exchange.GetBalance(ctx)
	if err != nil {
		return fmt.Errorf("fetch balance: %w", err)
	}

	stored, err := j.Repo.GetCurrent(ctx)
	if err != nil {
		return fmt.Errorf("load stored balance: %w", err)
	}

	if stored != nil && stored.TotalBalance > 0 {
		change := current.Balance - stored.TotalBalance
		changePercent := math.Abs(change) / stored.TotalBalance * 100
		if changePercent >= j.Threshold {
			changeType := "increase"
			if change < 0 {
				changeType = "decrease"
			}
			msg := telegram.BalanceChange(changeType, changePercent, stored.TotalBalance, current.Balance, math.Abs(change))
			if res := j.Notifier.Send(ctx, msg); !res.Success {
				log.Printf("Balance change alert not delivered: %s", res.Message)
			}
		}
	}

	snapshot := &balance.Snapshot{
		Asset:            current.Asset,
		TotalBalance:     current.Balance,
		AvailableMargin:  current.AvailableMargin,
		UsedMargin:       current.UsedMargin,
		UnrealizedProfit: current.UnrealizedProfit,
	}
	if stored != nil {
		snapshot.ID = stored.ID
	}
	if err := j.Repo.Upsert(ctx, snapshot); err != nil {
		return fmt.Errorf("store balance: %w", err)
	}
	return nil
}
