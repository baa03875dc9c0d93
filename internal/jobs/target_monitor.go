package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xempie/trade-sub002/internal/bingx/entity"
	positionrepo "github.com/xempie/trade-sub002/internal/position/repository"
	"github.com/xempie/trade-sub002/internal/signal"
	"github.com/xempie/trade-sub002/internal/telegram"
)

// Close reasons recorded on positions.
const (
	closeReasonStopLoss  = "STOP_LOSS"
	closeReasonTarget    = "TARGET_REACHED"
	closeReasonEmergency = "EMERGENCY_STOP"
)

// emergencyStopPercent is the leveraged loss at which a position is closed
// regardless of the stop-loss setting.
const emergencyStopPercent = -50.0

// SignalSource resolves the signal a position was opened from.
type SignalSource interface {
	GetByID(ctx context.Context, id int64) (*signal.Signal, error)
}

// TargetMonitor closes open positions when their stop loss or emergency
// threshold is hit and reports reached targets, once per position.
type TargetMonitor struct {
	Repo     positionrepo.PositionRepository
	Signals  SignalSource
	Pricing  Pricing
	Notifier Notifier

	TargetPercent float64 // leveraged P&L percent that counts as the target
	AutoStopLoss  bool    // close at the signal's stop instead of relying on exchange orders
	AutoClose     bool    // close at the target instead of notifying
}

func NewTargetMonitor(repo positionrepo.PositionRepository, signals SignalSource, pricing Pricing, notifier Notifier, targetPercent float64, autoStopLoss, autoClose bool) *TargetMonitor {
	if targetPercent <= 0 {
		targetPercent = 10
	}
	return &TargetMonitor{
		Repo:          repo,
		Signals:       signals,
		Pricing:       pricing,
		Notifier:      notifier,
		TargetPercent: targetPercent,
		AutoStopLoss:  autoStopLoss,
		AutoClose:     autoClose,
	}
}

func (j *TargetMonitor) Name() string            { return "target-stoploss-monitor" }
func (j *TargetMonitor) Interval() time.Duration { return time.Minute }

func (j *TargetMonitor) Run(ctx context.Context) error {
	open, err := j.Repo.GetOpen(ctx)
	if err != nil {
		return fmt.Errorf("load open positions: %w", err)
	}

	prices := map[string]float64{}
	for _, pos := range open {
		price, ok := prices[pos.Symbol]
		if !ok {
			price, err = j.Pricing.Price(ctx, pos.Symbol)
			if err != nil {
				log.Printf("Target monitor: price for %s: %v", pos.Symbol, err)
				price = 0
			}
			prices[pos.Symbol] = price
		}
		if price <= 0 {
			continue
		}

		pnlPercent := leveragedPnLPercent(pos.EntryPrice, price, pos.Side, pos.Leverage)

		var stopLoss float64
		if pos.SignalID != nil {
			sig, err := j.Signals.GetByID(ctx, *pos.SignalID)
			if err != nil {
				log.Printf("Target monitor: load signal %d: %v", *pos.SignalID, err)
			} else {
				stopLoss = sig.StopLoss
			}
		}

		if j.AutoStopLoss && stopLoss > 0 && stopHit(pos.Side, stopLoss, price) {
			if err := j.Repo.Close(ctx, pos.ID, price, closeReasonStopLoss); err != nil {
				log.Printf("Target monitor: close %s %s: %v", pos.Symbol, pos.Side, err)
				continue
			}
			msg := telegram.StopLossTriggered(pos.Symbol, pos.Side, pos.EntryPrice, stopLoss, price, pnlPercent, pos.Leverage)
			if res := j.Notifier.Send(ctx, msg); !res.Success {
				log.Printf("Target monitor: stop loss alert for %s failed: %s", pos.Symbol, res.Message)
			}
			continue
		}

		if pnlPercent >= j.TargetPercent {
			if j.AutoClose {
				if err := j.Repo.Close(ctx, pos.ID, price, closeReasonTarget); err != nil {
					log.Printf("Target monitor: close %s %s: %v", pos.Symbol, pos.Side, err)
				} else {
					msg := telegram.TargetReached(pos.Symbol, pos.Side, pos.EntryPrice, price, pnlPercent, j.TargetPercent, pos.Leverage, true)
					if res := j.Notifier.Send(ctx, msg); !res.Success {
						log.Printf("Target monitor: target alert for %s failed: %s", pos.Symbol, res.Message)
					}
					continue
				}
			} else if pos.TargetNotifiedAt == nil {
				msg := telegram.TargetReached(pos.Symbol, pos.Side, pos.EntryPrice, price, pnlPercent, j.TargetPercent, pos.Leverage, false)
				if res := j.Notifier.Send(ctx, msg); res.Success {
					if err := j.Repo.MarkTargetNotified(ctx, pos.ID); err != nil {
						log.Printf("Target monitor: mark notified %d: %v", pos.ID, err)
					}
				} else {
					log.Printf("Target monitor: target alert for %s failed: %s", pos.Symbol, res.Message)
				}
			}
		}

		if pnlPercent <= emergencyStopPercent {
			if err := j.Repo.Close(ctx, pos.ID, price, closeReasonEmergency); err != nil {
				log.Printf("Target monitor: emergency close %s %s: %v", pos.Symbol, pos.Side, err)
				continue
			}
			msg := telegram.EmergencyStop(pos.Symbol, pos.Side, pos.EntryPrice, price, pnlPercent, pos.Leverage)
			if res := j.Notifier.Send(ctx, msg); !res.Success {
				log.Printf("Target monitor: emergency alert for %s failed: %s", pos.Symbol, res.Message)
			}
		}
	}
	return nil
}

// leveragedPnLPercent is the price move from entry scaled by leverage.
func leveragedPnLPercent(entry, current float64, side string, leverage int) float64 {
	if entry <= 0 {
		return 0
	}
	change := (current - entry) / entry
	if side != entity.PositionLong {
		change = -change
	}
	if leverage <= 0 {
		leverage = 1
	}
	return change * float64(leverage) * 100
}

// stopHit reports whether the price crossed the stop. Longs stop below,
// shorts stop above.
func stopHit(side string, stop, price float64) bool {
	if side == entity.PositionLong {
		return price <= stop
	}
	return price >= stop
}
