package service

import "github.com/shopspring/decimal"

// PositionQuantity converts a margin amount into contract quantity:
// margin * leverage / entryPrice, rounded to 6 decimals.
func PositionQuantity(margin float64, leverage int, entryPrice float64) float64 {
	if entryPrice <= 0 || leverage <= 0 {
		return 0
	}
	qty := decimal.NewFromFloat(margin).
		Mul(decimal.NewFromInt(int64(leverage))).
		Div(decimal.NewFromFloat(entryPrice))
	f, _ := qty.Round(6).Float64()
	return f
}

// RoundPrice rounds a trigger price to the precision the exchange accepts.
func RoundPrice(price float64) float64 {
	f, _ := decimal.NewFromFloat(price).Round(8).Float64()
	return f
}
