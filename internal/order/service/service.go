package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/xempie/trade-sub002/internal/bingx/entity"
	bingx "github.com/xempie/trade-sub002/internal/bingx/service"
	"github.com/xempie/trade-sub002/internal/order"
	"github.com/xempie/trade-sub002/internal/order/repository"
	"github.com/xempie/trade-sub002/internal/signal"
)

// Exchange is the slice of the BingX client order placement needs.
type Exchange interface {
	SetLeverage(ctx context.Context, symbol string, leverage int) error
	PlaceOrder(ctx context.Context, req entity.OrderRequest) (int64, error)
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)
}

type Service struct {
	Exchange Exchange
	Repo     repository.OrderRepository

	// DefaultMargin is the USDT margin committed per entry order.
	DefaultMargin float64
}

func NewService(exchange Exchange, repo repository.OrderRepository, defaultMargin float64) *Service {
	if defaultMargin <= 0 {
		defaultMargin = 10
	}
	return &Service{Exchange: exchange, Repo: repo, DefaultMargin: defaultMargin}
}

type entryLevel struct {
	name  string
	price float64
}

// PlaceEntryOrders sets leverage and submits one order per entry level of
// the signal. The market entry goes out as a MARKET order; the remaining
// entries rest as TRIGGER_MARKET orders at their price. Each order row is
// persisted before the next placement so a mid-run failure leaves a record
// of what actually reached the exchange.
func (s *Service) PlaceEntryOrders(ctx context.Context, sig *signal.Signal) ([]*order.Order, error) {
	symbol := bingx.FormatSymbol(sig.Symbol)

	if err := s.Exchange.SetLeverage(ctx, symbol, sig.Leverage); err != nil {
		return nil, fmt.Errorf("set leverage for %s: %w", symbol, err)
	}

	side := entity.SideBuy
	positionSide := entity.PositionLong
	if sig.Side == "SHORT" {
		side = entity.SideSell
		positionSide = entity.PositionShort
	}

	levels := []entryLevel{{"market", sig.EntryMarketPrice}}
	if sig.Entry2 != nil {
		levels = append(levels, entryLevel{"entry_2", *sig.Entry2})
	}
	if sig.Entry3 != nil {
		levels = append(levels, entryLevel{"entry_3", *sig.Entry3})
	}

	var placed []*order.Order
	for _, level := range levels {
		if level.price <= 0 {
			continue
		}

		orderType := entity.OrderTypeTriggerMarket
		stopPrice := bingx.RoundPrice(level.price)
		if level.name == "market" {
			orderType = entity.OrderTypeMarket
			stopPrice = 0
		}

		quantity := bingx.PositionQuantity(s.DefaultMargin, sig.Leverage, level.price)
		clientID := uuid.NewString()

		exchangeID, err := s.Exchange.PlaceOrder(ctx, entity.OrderRequest{
			Symbol:        symbol,
			Side:          side,
			PositionSide:  positionSide,
			Type:          orderType,
			Quantity:      quantity,
			StopPrice:     stopPrice,
			ClientOrderID: clientID,
		})
		if err != nil {
			log.Printf("Order placement failed for %s %s level: %v", symbol, level.name, err)
			return placed, fmt.Errorf("place %s order for %s: %w", level.name, symbol, err)
		}

		status := order.StatusPending
		if orderType == entity.OrderTypeMarket {
			status = order.StatusNew
		}

		o := &order.Order{
			SignalID:        &sig.ID,
			Symbol:          symbol,
			Side:            side,
			PositionSide:    positionSide,
			Type:            orderType,
			EntryLevel:      level.name,
			Quantity:        quantity,
			Price:           level.price,
			Leverage:        sig.Leverage,
			ExchangeOrderID: &exchangeID,
			ClientOrderID:   &clientID,
			Status:          status,
		}
		if err := s.Repo.Save(ctx, o); err != nil {
			return placed, fmt.Errorf("save %s order for %s: %w", level.name, symbol, err)
		}
		placed = append(placed, o)
	}

	return placed, nil
}
