package entity

// Order side / position side / type values as the exchange expects them.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	PositionLong  = "LONG"
	PositionShort = "SHORT"

	OrderTypeMarket           = "MARKET"
	OrderTypeTriggerMarket    = "TRIGGER_MARKET"
	OrderTypeStopMarket       = "STOP_MARKET"
	OrderTypeTakeProfitMarket = "TAKE_PROFIT_MARKET"
)

// OrderRequest is what we send to the order placement endpoint.
type OrderRequest struct {
	Symbol        string
	Side          string
	PositionSide  string
	Type          string
	Quantity      float64
	StopPrice     float64
	ClientOrderID string
}

// OrderStatus is the polled state of an exchange order.
type OrderStatus struct {
	OrderID  int64
	Symbol   string
	Status   string // NEW, FILLED, CANCELED...
	AvgPrice float64
}

// OpenOrder is one resting order returned by the open-orders endpoint.
type OpenOrder struct {
	OrderID      int64
	Symbol       string
	Side         string
	PositionSide string
	Type         string
	StopPrice    float64
}
