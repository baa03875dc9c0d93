package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xempie/trade-sub002/internal/bingx/entity"
	positionrepo "github.com/xempie/trade-sub002/internal/position/repository"
	"github.com/xempie/trade-sub002/internal/telegram"
)

// PositionExchange is the slice of the BingX client the position job needs.
type PositionExchange interface {
	GetPositions(ctx context.Context, symbol string) ([]entity.Position, error)
}

var (
	profitMilestones = []float64{10, 25, 50}
	lossMilestones   = []float64{-10, -25, -50}
)

// PositionSync refreshes unrealized P&L for open positions and sends a
// milestone alert the first time the P&L percentage crosses a threshold.
type PositionSync struct {
	Exchange PositionExchange
	Repo     positionrepo.PositionRepository
	Notifier Notifier
}

func NewPositionSync(exchange PositionExchange, repo positionrepo.PositionRepository, notifier Notifier) *PositionSync {
	return &PositionSync{Exchange: exchange, Repo: repo, Notifier: notifier}
}

func (j *PositionSync) Name() string            { return "position-sync" }
func (j *PositionSync) Interval() time.Duration { return 5 * time.Minute }

func (j *PositionSync) Run(ctx context.Context) error {
	open, err := j.Repo.GetOpen(ctx)
	if err != nil {
		return fmt.Errorf("load open positions: %w", err)
	}
	if len(open) == 0 {
		return nil
	}

	exchangePositions, err := j.Exchange.GetPositions(ctx, "")
	if err != nil {
		return fmt.Errorf("fetch exchange positions: %w", err)
	}

	type key struct{ symbol, side string }
	bySymbolSide := make(map[key]entity.Position, len(exchangePositions))
	for _, p := range exchangePositions {
		bySymbolSide[key{p.Symbol, p.PositionSide}] = p
	}

	for _, pos := range open {
		live, ok := bySymbolSide[key{pos.Symbol, pos.Side}]
		if !ok {
			log.Printf("Position sync: %s %s not found on exchange, leaving as is", pos.Symbol, pos.Side)
			continue
		}

		oldPercent := pos.PnLPercent(pos.UnrealizedPnL)
		newPercent := pos.PnLPercent(live.UnrealizedProfit)

		if err := j.Repo.UpdatePnL(ctx, pos.ID, live.UnrealizedProfit); err != nil {
			log.Printf("Position sync: update P&L for %s: %v", pos.Symbol, err)
			continue
		}

		j.checkMilestones(ctx, pos.Symbol, pos.Side, oldPercent, newPercent, live.UnrealizedProfit)
	}
	return nil
}

// checkMilestones fires each alert exactly once per crossing: profit
// milestones on the way up, loss milestones on the way down.
func (j *PositionSync) checkMilestones(ctx context.Context, symbol, side string, oldPercent, newPercent, pnl float64) {
	for _, m := range profitMilestones {
		if oldPercent < m && newPercent >= m {
			msg := telegram.PnLMilestone(symbol, side, "profit", m, newPercent, pnl)
			if res := j.Notifier.Send(ctx, msg); !res.Success {
				log.Printf("Profit milestone alert not delivered: %s", res.Message)
			}
		}
	}
	for _, m := range lossMilestones {
		if oldPercent > m && newPercent <= m {
			msg := telegram.PnLMilestone(symbol, side, "loss", m, newPercent, pnl)
			if res := j.Notifier.Send(ctx, msg); !res.Success {
				log.Printf("Loss milestone alert not delivered: %s", res.Message)
			}
		}
	}
}
