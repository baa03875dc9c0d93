package order

import "time"

// Order lifecycle statuses. FILLED and CANCELLED are terminal.
const (
	StatusNew       = "NEW"
	StatusPending   = "PENDING"
	StatusFilled    = "FILLED"
	StatusCancelled = "CANCELLED"
)

type Order struct {
	ID              int64
	SignalID        *int64
	Symbol          string
	Side            string // BUY or SELL
	PositionSide    string // LONG or SHORT
	Type            string // MARKET, TRIGGER_MARKET, STOP_MARKET, TAKE_PROFIT_MARKET
	EntryLevel      string // market, entry_2, entry_3
	Quantity        float64
	Price           float64
	Leverage        int
	ExchangeOrderID *int64
	ClientOrderID   *string
	Status          string
	FillPrice       *float64
	FillTime        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
