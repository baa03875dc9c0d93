package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xempie/trade-sub002/internal/watchlist"
)

type fakeWatchlistRepo struct {
	items     []*watchlist.Item
	triggered []int64
}

func (f *fakeWatchlistRepo) Save(ctx context.Context, item *watchlist.Item) error { return nil }

func (f *fakeWatchlistRepo) GetActive(ctx context.Context, limit int) ([]*watchlist.Item, error) {
	return f.items, nil
}

func (f *fakeWatchlistRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return nil
}

func (f *fakeWatchlistRepo) MarkTriggered(ctx context.Context, id int64) error {
	f.triggered = append(f.triggered, id)
	return nil
}

func (f *fakeWatchlistRepo) Delete(ctx context.Context, id int64) error { return nil }

type fakePricing struct {
	prices map[string]float64
	calls  int
}

func (f *fakePricing) Price(ctx context.Context, symbol string) (float64, error) {
	f.calls++
	p, ok := f.prices[symbol]
	if !ok {
		return 0, errors.New("no price")
	}
	return p, nil
}

func TestTriggered(t *testing.T) {
	tests := []struct {
		direction string
		entry     float64
		price     float64
		want      bool
	}{
		{"long", 100, 99, true},
		{"long", 100, 100, true},
		{"long", 100, 101, false},
		{"short", 100, 101, true},
		{"short", 100, 100, true},
		{"short", 100, 99, false},
	}
	for _, tt := range tests {
		if got := triggered(tt.direction, tt.entry, tt.price); got != tt.want {
			t.Errorf("triggered(%q, %v, %v) = %v, want %v",
				tt.direction, tt.entry, tt.price, got, tt.want)
		}
	}
}

func TestPriceMonitorTriggersAndMarks(t *testing.T) {
	repo := &fakeWatchlistRepo{items: []*watchlist.Item{
		{ID: 1, Symbol: "BTC-USDT", EntryPrice: 44100, EntryType: "entry_2", Direction: "long", MarginAmount: 250},
		{ID: 2, Symbol: "BTC-USDT", EntryPrice: 40000, EntryType: "entry_3", Direction: "long", MarginAmount: 250},
		{ID: 3, Symbol: "ETH-USDT", EntryPrice: 3100, EntryType: "market", Direction: "short", MarginAmount: 100},
	}}
	pricing := &fakePricing{prices: map[string]float64{
		"BTC-USDT": 44000,
		"ETH-USDT": 3150,
	}}
	notifier := &recordingNotifier{}

	j := NewPriceMonitor(repo, pricing, notifier, "https://app.example.com")
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// Items 1 (long, price below entry) and 3 (short, price above entry)
	// trigger; item 2 stays active.
	if len(repo.triggered) != 2 || repo.triggered[0] != 1 || repo.triggered[1] != 3 {
		t.Errorf("triggered ids = %v, want [1 3]", repo.triggered)
	}
	if len(notifier.messages) != 2 {
		t.Fatalf("sent %d alerts, want 2", len(notifier.messages))
	}
	if !strings.Contains(notifier.messages[0], "Price Alert Triggered") {
		t.Errorf("alert text wrong: %q", notifier.messages[0])
	}

	// One price lookup per distinct symbol
	if pricing.calls != 2 {
		t.Errorf("pricing called %d times, want 2", pricing.calls)
	}
}

func TestPriceMonitorSkipsSymbolWithoutPrice(t *testing.T) {
	repo := &fakeWatchlistRepo{items: []*watchlist.Item{
		{ID: 1, Symbol: "XYZ-USDT", EntryPrice: 10, Direction: "long"},
	}}
	notifier := &recordingNotifier{}

	j := NewPriceMonitor(repo, &fakePricing{prices: map[string]float64{}}, notifier, "")
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(repo.triggered) != 0 || len(notifier.messages) != 0 {
		t.Errorf("nothing should trigger without a price")
	}
}
