package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xempie/trade-sub002/internal/telegram"
	"github.com/xempie/trade-sub002/internal/watchlist"
	watchlistrepo "github.com/xempie/trade-sub002/internal/watchlist/repository"
)

// Pricing resolves current prices; satisfied by *pricing.Source.
type Pricing interface {
	Price(ctx context.Context, symbol string) (float64, error)
}

// PriceMonitor walks the active watchlist and fires a price alert when an
// entry level is reached. Long entries trigger at or below the level, short
// entries at or above. Triggered items never re-fire.
type PriceMonitor struct {
	Repo     watchlistrepo.WatchlistRepository
	Pricing  Pricing
	Notifier Notifier

	// AppBaseURL is the web app origin used for the alert action buttons.
	// Alerts go out without buttons when it is empty.
	AppBaseURL string
}

func NewPriceMonitor(repo watchlistrepo.WatchlistRepository, pricing Pricing, notifier Notifier, appBaseURL string) *PriceMonitor {
	return &PriceMonitor{Repo: repo, Pricing: pricing, Notifier: notifier, AppBaseURL: appBaseURL}
}

func (j *PriceMonitor) Name() string            { return "price-monitor" }
func (j *PriceMonitor) Interval() time.Duration { return time.Minute }

func (j *PriceMonitor) Run(ctx context.Context) error {
	items, err := j.Repo.GetActive(ctx, 0)
	if err != nil {
		return fmt.Errorf("load watchlist: %w", err)
	}

	// One price lookup per symbol per run
	prices := map[string]float64{}
	for _, item := range items {
		price, ok := prices[item.Symbol]
		if !ok {
			price, err = j.Pricing.Price(ctx, item.Symbol)
			if err != nil {
				log.Printf("Price monitor: price for %s unavailable: %v", item.Symbol, err)
				prices[item.Symbol] = 0
				continue
			}
			prices[item.Symbol] = price
		}
		if price <= 0 {
			continue
		}

		if !triggered(item.Direction, item.EntryPrice, price) {
			continue
		}

		if err := j.Repo.MarkTriggered(ctx, item.ID); err != nil {
			log.Printf("Price monitor: mark triggered %d: %v", item.ID, err)
			continue
		}

		openURL, removeURL := j.actionURLs(item)
		msg := telegram.PriceAlert(item.Symbol, item.EntryType, item.EntryPrice, price,
			item.Direction, item.MarginAmount, openURL, removeURL)
		if res := j.Notifier.Send(ctx, msg); !res.Success {
			log.Printf("Price alert not delivered: %s", res.Message)
		}
	}
	return nil
}

func triggered(direction string, entry, price float64) bool {
	if direction == "short" {
		return price >= entry
	}
	return price <= entry
}

func (j *PriceMonitor) actionURLs(item *watchlist.Item) (openURL, removeURL string) {
	if j.AppBaseURL == "" {
		return "", ""
	}
	openURL = fmt.Sprintf("%s/trade?symbol=%s&direction=%s&watchlist_id=%d",
		j.AppBaseURL, item.Symbol, item.Direction, item.ID)
	removeURL = fmt.Sprintf("%s/watchlist/remove?id=%d", j.AppBaseURL, item.ID)
	return openURL, removeURL
}
