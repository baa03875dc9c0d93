package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/xempie/trade-sub002/internal/bingx/entity"
	bingx "github.com/xempie/trade-sub002/internal/bingx/service"
	"github.com/xempie/trade-sub002/internal/position"
	positionrepo "github.com/xempie/trade-sub002/internal/position/repository"
)

// Default protective distances from the entry price.
const (
	defaultStopLossPercent   = 0.02
	defaultTakeProfitPercent = 0.05
)

// requestPause spaces out order placements so a large position book does
// not trip the exchange rate limits.
const requestPause = 500 * time.Millisecond

// SLTPExchange is the slice of the BingX client the protective-order job
// needs.
type SLTPExchange interface {
	GetOpenOrders(ctx context.Context, symbol string) ([]entity.OpenOrder, error)
	PlaceOrder(ctx context.Context, req entity.OrderRequest) (int64, error)
}

// SLTPMonitor makes sure every open position carries a stop loss and a take
// profit order on the exchange, placing the missing ones at the originating
// signal's prices, or at the default distances when the signal has none.
type SLTPMonitor struct {
	Exchange SLTPExchange
	Repo     positionrepo.PositionRepository
	Signals  SignalSource
}

func NewSLTPMonitor(exchange SLTPExchange, repo positionrepo.PositionRepository, signals SignalSource) *SLTPMonitor {
	return &SLTPMonitor{Exchange: exchange, Repo: repo, Signals: signals}
}

func (j *SLTPMonitor) Name() string            { return "sltp-monitor" }
func (j *SLTPMonitor) Interval() time.Duration { return 5 * time.Minute }

func (j *SLTPMonitor) Run(ctx context.Context) error {
	open, err := j.Repo.GetOpen(ctx)
	if err != nil {
		return fmt.Errorf("load open positions: %w", err)
	}

	// One open-orders call per symbol per run
	ordersBySymbol := map[string][]entity.OpenOrder{}
	for _, pos := range open {
		orders, ok := ordersBySymbol[pos.Symbol]
		if !ok {
			orders, err = j.Exchange.GetOpenOrders(ctx, pos.Symbol)
			if err != nil {
				log.Printf("SL/TP monitor: open orders for %s: %v", pos.Symbol, err)
				continue
			}
			ordersBySymbol[pos.Symbol] = orders
		}

		hasStop, hasTakeProfit := protectiveOrders(orders, pos.Side)
		if hasStop && hasTakeProfit {
			continue
		}
		stopPrice, takeProfitPrice := j.protectivePrices(ctx, pos)

		if !hasStop {
			if err := j.placeProtective(ctx, pos, entity.OrderTypeStopMarket, stopPrice); err != nil {
				log.Printf("SL/TP monitor: place stop loss for %s %s: %v", pos.Symbol, pos.Side, err)
			}
			pause(ctx)
		}
		if !hasTakeProfit {
			if err := j.placeProtective(ctx, pos, entity.OrderTypeTakeProfitMarket, takeProfitPrice); err != nil {
				log.Printf("SL/TP monitor: place take profit for %s %s: %v", pos.Symbol, pos.Side, err)
			}
			pause(ctx)
		}
	}
	return nil
}

func protectiveOrders(orders []entity.OpenOrder, positionSide string) (hasStop, hasTakeProfit bool) {
	for _, o := range orders {
		if o.PositionSide != positionSide {
			continue
		}
		switch o.Type {
		case entity.OrderTypeStopMarket:
			hasStop = true
		case entity.OrderTypeTakeProfitMarket:
			hasTakeProfit = true
		}
	}
	return hasStop, hasTakeProfit
}

// protectivePrices returns the stop and take profit from the originating
// signal, with the default distances from the entry price covering a
// missing signal or unset levels.
func (j *SLTPMonitor) protectivePrices(ctx context.Context, pos *position.Position) (stop, takeProfit float64) {
	isLong := pos.Side == entity.PositionLong
	if isLong {
		stop = pos.EntryPrice * (1 - defaultStopLossPercent)
		takeProfit = pos.EntryPrice * (1 + defaultTakeProfitPercent)
	} else {
		stop = pos.EntryPrice * (1 + defaultStopLossPercent)
		takeProfit = pos.EntryPrice * (1 - defaultTakeProfitPercent)
	}

	if pos.SignalID == nil || j.Signals == nil {
		return stop, takeProfit
	}
	sig, err := j.Signals.GetByID(ctx, *pos.SignalID)
	if err != nil {
		log.Printf("SL/TP monitor: load signal %d: %v", *pos.SignalID, err)
		return stop, takeProfit
	}
	if sig.StopLoss > 0 {
		stop = sig.StopLoss
	}
	if tps := sig.TakeProfits(); len(tps) > 0 && tps[0] > 0 {
		takeProfit = tps[0]
	}
	return stop, takeProfit
}

// placeProtective submits one closing order at the given trigger price.
// Closing a LONG sells, closing a SHORT buys.
func (j *SLTPMonitor) placeProtective(ctx context.Context, pos *position.Position, orderType string, price float64) error {
	side := entity.SideSell
	if pos.Side != entity.PositionLong {
		side = entity.SideBuy
	}

	_, err := j.Exchange.PlaceOrder(ctx, entity.OrderRequest{
		Symbol:        pos.Symbol,
		Side:          side,
		PositionSide:  pos.Side,
		Type:          orderType,
		Quantity:      pos.Size,
		StopPrice:     bingx.RoundPrice(price),
		ClientOrderID: uuid.NewString(),
	})
	return err
}

func pause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(requestPause):
	}
}
