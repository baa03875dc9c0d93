package pricing

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"

	bingx "github.com/xempie/trade-sub002/internal/bingx/service"
)

// maxCacheAge bounds how stale a streamed price may be before falling back
// to REST.
const maxCacheAge = 10 * time.Second

// Source resolves current prices, preferring the websocket cache, then the
// BingX REST ticker, then Binance futures as a last resort (most BingX
// perpetual symbols are listed there too).
type Source struct {
	Feed    *bingx.PriceFeed // optional
	Client  *bingx.Client
	Binance *futures.Client // optional fallback
}

func NewSource(feed *bingx.PriceFeed, client *bingx.Client, binanceClient *futures.Client) *Source {
	return &Source{Feed: feed, Client: client, Binance: binanceClient}
}

// Price returns the current price for a contract symbol in "BTC-USDT" form.
func (s *Source) Price(ctx context.Context, symbol string) (float64, error) {
	if s.Feed != nil {
		if p, ok := s.Feed.Price(symbol, maxCacheAge); ok {
			return p, nil
		}
		s.Feed.Watch(symbol)
	}

	p, err := s.Client.GetTickerPrice(ctx, symbol)
	if err == nil && p > 0 {
		return p, nil
	}
	restErr := err

	if s.Binance != nil {
		prices, berr := s.Binance.NewListPricesService().
			Symbol(bingx.BinanceSymbol(symbol)).Do(ctx)
		if berr == nil && len(prices) > 0 {
			if fp, perr := strconv.ParseFloat(prices[0].Price, 64); perr == nil && fp > 0 {
				log.Printf("Pricing: %s resolved via Binance fallback", symbol)
				return fp, nil
			}
		}
	}

	if restErr != nil {
		return 0, fmt.Errorf("price for %s unavailable: %w", symbol, restErr)
	}
	return 0, fmt.Errorf("price for %s unavailable", symbol)
}
