package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xempie/trade-sub002/internal/bingx/entity"
	"github.com/xempie/trade-sub002/internal/order"
	orderrepo "github.com/xempie/trade-sub002/internal/order/repository"
	"github.com/xempie/trade-sub002/internal/position"
	positionrepo "github.com/xempie/trade-sub002/internal/position/repository"
	"github.com/xempie/trade-sub002/internal/telegram"
)

// OrderExchange is the slice of the BingX client the order job needs.
type OrderExchange interface {
	GetOrder(ctx context.Context, symbol string, orderID int64) (*entity.OrderStatus, error)
}

// OrderStatus polls the exchange for orders we are still waiting on, records
// fills and cancellations, and opens a tracked position on the first fill
// for a signal side.
type OrderStatus struct {
	Exchange  OrderExchange
	Orders    orderrepo.OrderRepository
	Positions positionrepo.PositionRepository
	Notifier  Notifier
}

func NewOrderStatus(exchange OrderExchange, orders orderrepo.OrderRepository, positions positionrepo.PositionRepository, notifier Notifier) *OrderStatus {
	return &OrderStatus{Exchange: exchange, Orders: orders, Positions: positions, Notifier: notifier}
}

func (j *OrderStatus) Name() string            { return "order-status" }
func (j *OrderStatus) Interval() time.Duration { return 2 * time.Minute }

func (j *OrderStatus) Run(ctx context.Context) error {
	pending, err := j.Orders.GetPendingWithExchangeID(ctx)
	if err != nil {
		return fmt.Errorf("load pending orders: %w", err)
	}

	for _, o := range pending {
		status, err := j.Exchange.GetOrder(ctx, o.Symbol, *o.ExchangeOrderID)
		if err != nil {
			log.Printf("Order status: poll %s/%d: %v", o.Symbol, *o.ExchangeOrderID, err)
			continue
		}

		switch status.Status {
		case "FILLED":
			j.handleFilled(ctx, o, status)
		case "CANCELED", "CANCELLED":
			j.handleCancelled(ctx, o)
		}
	}
	return nil
}

func (j *OrderStatus) handleFilled(ctx context.Context, o *order.Order, status *entity.OrderStatus) {
	fillPrice := status.AvgPrice
	if fillPrice <= 0 {
		fillPrice = o.Price
	}
	fillTime := time.Now().UTC()

	if err := j.Orders.MarkFilled(ctx, o.ID, fillPrice, fillTime); err != nil {
		log.Printf("Order status: mark filled %d: %v", o.ID, err)
		return
	}

	positionSide := o.PositionSide
	if positionSide == "" {
		positionSide = entity.PositionLong
		if o.Side == entity.SideSell {
			positionSide = entity.PositionShort
		}
	}

	if o.SignalID != nil {
		exists, err := j.Positions.HasOpenForSignal(ctx, *o.SignalID, positionSide)
		if err != nil {
			log.Printf("Order status: open position check for signal %d: %v", *o.SignalID, err)
		} else if !exists {
			marginUsed := 0.0
			if o.Leverage > 0 {
				marginUsed = o.Quantity * fillPrice / float64(o.Leverage)
			}
			p := &position.Position{
				SignalID:   o.SignalID,
				Symbol:     o.Symbol,
				Side:       positionSide,
				Size:       o.Quantity,
				EntryPrice: fillPrice,
				Leverage:   o.Leverage,
				MarginUsed: marginUsed,
				Status:     position.StatusOpen,
			}
			if err := j.Positions.Save(ctx, p); err != nil {
				log.Printf("Order status: create position for signal %d: %v", *o.SignalID, err)
			}
		}
	}

	msg := telegram.OrderFilled(o.Symbol, o.Side, o.Quantity, fillPrice, o.Leverage, o.EntryLevel)
	if res := j.Notifier.Send(ctx, msg); !res.Success {
		log.Printf("Order filled alert not delivered: %s", res.Message)
	}
}

func (j *OrderStatus) handleCancelled(ctx context.Context, o *order.Order) {
	if err := j.Orders.MarkCancelled(ctx, o.ID); err != nil {
		log.Printf("Order status: mark cancelled %d: %v", o.ID, err)
		return
	}
	msg := telegram.OrderCancelled(o.Symbol, o.Quantity, o.Price, o.Side)
	if res := j.Notifier.Send(ctx, msg); !res.Success {
		log.Printf("Order cancelled alert not delivered: %s", res.Message)
	}
}
