package service

import "strings"

// FormatSymbol converts chart-tool tickers into the exchange contract form,
// e.g. "BINGX:BTCUSDT.P" -> "BTC-USDT".
func FormatSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimPrefix(s, "BINGX:")
	s = strings.TrimPrefix(s, "BINGX")
	s = strings.TrimSuffix(s, ".P")

	if strings.Contains(s, "USDT") && !strings.Contains(s, "-USDT") {
		s = strings.Replace(s, "USDT", "-USDT", 1)
	}
	s = strings.ReplaceAll(s, "--", "-")
	return s
}

// BaseAsset strips the quote suffix: "BTC-USDT" -> "BTC".
func BaseAsset(symbol string) string {
	return strings.TrimSuffix(symbol, "-USDT")
}

// BinanceSymbol converts the contract form into Binance notation,
// "BTC-USDT" -> "BTCUSDT", for the fallback price source.
func BinanceSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "-", "")
}
