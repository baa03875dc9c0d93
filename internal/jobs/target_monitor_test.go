package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xempie/trade-sub002/internal/bingx/entity"
	"github.com/xempie/trade-sub002/internal/position"
	"github.com/xempie/trade-sub002/internal/signal"
)

type fakeSignals struct {
	byID map[int64]*signal.Signal
}

func (f *fakeSignals) GetByID(ctx context.Context, id int64) (*signal.Signal, error) {
	sig, ok := f.byID[id]
	if !ok {
		return nil, errors.New("signal not found")
	}
	return sig, nil
}

func TestLeveragedPnLPercent(t *testing.T) {
	tests := []struct {
		name     string
		entry    float64
		current  float64
		side     string
		leverage int
		want     float64
	}{
		{"long gain", 100, 104, entity.PositionLong, 5, 20},
		{"long loss", 100, 98, entity.PositionLong, 5, -10},
		{"short gain", 100, 90, entity.PositionShort, 2, 20},
		{"short loss", 100, 104, entity.PositionShort, 5, -20},
		{"zero entry", 0, 100, entity.PositionLong, 5, 0},
		{"zero leverage counts as 1x", 100, 110, entity.PositionLong, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := leveragedPnLPercent(tt.entry, tt.current, tt.side, tt.leverage)
			if got < tt.want-0.0001 || got > tt.want+0.0001 {
				t.Errorf("leveragedPnLPercent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStopHit(t *testing.T) {
	if !stopHit(entity.PositionLong, 44000, 43900) {
		t.Error("long stop at 44000 with price 43900 should hit")
	}
	if stopHit(entity.PositionLong, 44000, 44100) {
		t.Error("long stop should not hit above the stop")
	}
	if !stopHit(entity.PositionShort, 46000, 46100) {
		t.Error("short stop at 46000 with price 46100 should hit")
	}
	if stopHit(entity.PositionShort, 46000, 45900) {
		t.Error("short stop should not hit below the stop")
	}
}

func monitoredPosition(id, signalID int64, symbol, side string, entry float64, leverage int) *position.Position {
	return &position.Position{
		ID: id, SignalID: &signalID, Symbol: symbol, Side: side,
		EntryPrice: entry, Size: 0.013, Leverage: leverage,
		Status: position.StatusOpen,
	}
}

func TestTargetMonitorStopLossCloses(t *testing.T) {
	repo := &fakePositionRepo{}
	repoWithOpen := &fakeOpenPositions{positions: []*position.Position{
		monitoredPosition(1, 7, "BTC-USDT", entity.PositionLong, 45000, 6),
	}, inner: repo}
	signals := &fakeSignals{byID: map[int64]*signal.Signal{
		7: {ID: 7, StopLoss: 44000},
	}}
	pricing := &fakePricing{prices: map[string]float64{"BTC-USDT": 43900}}
	notifier := &recordingNotifier{}

	j := NewTargetMonitor(repoWithOpen, signals, pricing, notifier, 10, true, false)
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(repo.closed) != 1 {
		t.Fatalf("closed %d positions, want 1", len(repo.closed))
	}
	c := repo.closed[0]
	if c.id != 1 || c.price != 43900 || c.reason != "STOP_LOSS" {
		t.Errorf("close = %+v", c)
	}
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "Stop Loss Triggered") {
		t.Errorf("stop loss alert missing: %v", notifier.messages)
	}
}

func TestTargetMonitorStopLossDisabled(t *testing.T) {
	repo := &fakePositionRepo{}
	repoWithOpen := &fakeOpenPositions{positions: []*position.Position{
		monitoredPosition(1, 7, "BTC-USDT", entity.PositionLong, 45000, 6),
	}, inner: repo}
	signals := &fakeSignals{byID: map[int64]*signal.Signal{
		7: {ID: 7, StopLoss: 44000},
	}}
	pricing := &fakePricing{prices: map[string]float64{"BTC-USDT": 43900}}
	notifier := &recordingNotifier{}

	j := NewTargetMonitor(repoWithOpen, signals, pricing, notifier, 10, false, false)
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(repo.closed) != 0 || len(notifier.messages) != 0 {
		t.Errorf("nothing should fire with auto stop loss off: closed=%v messages=%v",
			repo.closed, notifier.messages)
	}
}

func TestTargetMonitorShortStopLoss(t *testing.T) {
	repo := &fakePositionRepo{}
	repoWithOpen := &fakeOpenPositions{positions: []*position.Position{
		monitoredPosition(1, 7, "ETH-USDT", entity.PositionShort, 3000, 6),
	}, inner: repo}
	signals := &fakeSignals{byID: map[int64]*signal.Signal{
		7: {ID: 7, StopLoss: 3150},
	}}
	pricing := &fakePricing{prices: map[string]float64{"ETH-USDT": 3160}}

	j := NewTargetMonitor(repoWithOpen, signals, pricing, &recordingNotifier{}, 10, true, false)
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(repo.closed) != 1 || repo.closed[0].reason != "STOP_LOSS" {
		t.Errorf("short stop should close the position, closed = %v", repo.closed)
	}
}

func TestTargetMonitorNotifiesTargetOnce(t *testing.T) {
	pos := monitoredPosition(1, 7, "BTC-USDT", entity.PositionLong, 100, 6)
	repo := &fakePositionRepo{}
	repoWithOpen := &fakeOpenPositions{positions: []*position.Position{pos}, inner: repo}
	// +2% price move at 6x leverage is +12%, past the 10% target
	pricing := &fakePricing{prices: map[string]float64{"BTC-USDT": 102}}
	notifier := &recordingNotifier{}

	j := NewTargetMonitor(repoWithOpen, &fakeSignals{}, pricing, notifier, 10, false, false)
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "Target Reached") {
		t.Fatalf("target alert missing: %v", notifier.messages)
	}
	if strings.Contains(notifier.messages[0], "Auto Closed") {
		t.Error("notify mode must not report an auto close")
	}
	if len(repo.targetNotified) != 1 || repo.targetNotified[0] != 1 {
		t.Errorf("target notified ids = %v, want [1]", repo.targetNotified)
	}
	if len(repo.closed) != 0 {
		t.Errorf("notify mode must not close the position")
	}

	// A later run sees the notified timestamp and stays quiet
	now := time.Now()
	pos.TargetNotifiedAt = &now
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if len(notifier.messages) != 1 {
		t.Errorf("target alert repeated: %v", notifier.messages)
	}
}

func TestTargetMonitorAutoClosesTarget(t *testing.T) {
	repo := &fakePositionRepo{}
	repoWithOpen := &fakeOpenPositions{positions: []*position.Position{
		monitoredPosition(1, 7, "BTC-USDT", entity.PositionLong, 100, 6),
	}, inner: repo}
	pricing := &fakePricing{prices: map[string]float64{"BTC-USDT": 102}}
	notifier := &recordingNotifier{}

	j := NewTargetMonitor(repoWithOpen, &fakeSignals{}, pricing, notifier, 10, false, true)
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(repo.closed) != 1 || repo.closed[0].reason != "TARGET_REACHED" {
		t.Fatalf("closed = %v, want one TARGET_REACHED close", repo.closed)
	}
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "Auto Closed") {
		t.Errorf("auto close alert missing: %v", notifier.messages)
	}
}

func TestTargetMonitorEmergencyStop(t *testing.T) {
	repo := &fakePositionRepo{}
	repoWithOpen := &fakeOpenPositions{positions: []*position.Position{
		monitoredPosition(1, 7, "BTC-USDT", entity.PositionLong, 100, 6),
	}, inner: repo}
	// -10% price move at 6x leverage is -60%, past the emergency threshold
	pricing := &fakePricing{prices: map[string]float64{"BTC-USDT": 90}}
	notifier := &recordingNotifier{}

	j := NewTargetMonitor(repoWithOpen, &fakeSignals{}, pricing, notifier, 10, false, false)
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(repo.closed) != 1 || repo.closed[0].reason != "EMERGENCY_STOP" {
		t.Fatalf("closed = %v, want one EMERGENCY_STOP close", repo.closed)
	}
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "Emergency Stop Loss") {
		t.Errorf("emergency alert missing: %v", notifier.messages)
	}
}

func TestTargetMonitorSkipsSymbolWithoutPrice(t *testing.T) {
	repo := &fakePositionRepo{}
	repoWithOpen := &fakeOpenPositions{positions: []*position.Position{
		monitoredPosition(1, 7, "XYZ-USDT", entity.PositionLong, 100, 6),
	}, inner: repo}
	notifier := &recordingNotifier{}

	j := NewTargetMonitor(repoWithOpen, &fakeSignals{}, &fakePricing{prices: map[string]float64{}}, notifier, 10, true, true)
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(repo.closed) != 0 || len(notifier.messages) != 0 {
		t.Errorf("nothing should fire without a price")
	}
}
