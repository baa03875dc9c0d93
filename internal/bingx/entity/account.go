package entity

// Balance is the USDT perpetual account snapshot.
type Balance struct {
	Asset            string
	Balance          float64
	AvailableMargin  float64
	UsedMargin       float64
	UnrealizedProfit float64
}

// Position is one open perpetual position on the exchange.
type Position struct {
	Symbol           string
	PositionSide     string // LONG or SHORT
	PositionAmt      float64
	AvgPrice         float64
	Leverage         int
	UnrealizedProfit float64
	Margin           float64
}

// Ticker holds the latest trade price for a contract.
type Ticker struct {
	Symbol    string
	LastPrice float64
}

// Contract describes one tradable perpetual contract.
type Contract struct {
	Symbol            string
	PricePrecision    int
	QuantityPrecision int
	Status            int
}
