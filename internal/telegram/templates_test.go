package telegram

import (
	"strings"
	"testing"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{45900, "45,900.00"},
		{1234567.891, "1,234,567.89"},
		{0.5, "0.50"},
		{-2500, "-2,500.00"},
		{999, "999.00"},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.in); got != tt.want {
			t.Errorf("formatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTradingSignalAlert(t *testing.T) {
	entry2 := 44100.0
	msg := TradingSignalAlert(TradingSignal{
		Symbol:      "BTC-USDT",
		Side:        "LONG",
		Leverage:    6,
		EntryMarket: 45000,
		Entry2:      &entry2,
		TakeProfits: []float64{45900, 46800},
		StopLoss:    42750,
	})

	for _, want := range []string{
		"TRADING SIGNAL ALERT",
		"<b>Symbol:</b> BTC", // -USDT suffix stripped
		"LONG 🟩",
		"<b>Leverage:</b> 6x",
		"Market: $45,000.00",
		"Entry 2: $44,100.00",
		"TP1: $45,900.00",
		"TP2: $46,800.00",
		"<b>🛑 Stop Loss:</b> $42,750.00",
		"UTC",
	} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("alert missing %q:\n%s", want, msg.Text)
		}
	}
	if strings.Contains(msg.Text, "Entry 3") {
		t.Errorf("alert should not render a missing entry 3")
	}
	if strings.Contains(msg.Text, "TP3") {
		t.Errorf("alert should not render a missing TP3")
	}
}

func TestShortSideEmoji(t *testing.T) {
	msg := TradingSignalAlert(TradingSignal{
		Symbol: "ETH-USDT", Side: "SHORT", Leverage: 10,
		EntryMarket: 3000, TakeProfits: []float64{2940}, StopLoss: 3150,
	})
	if !strings.Contains(msg.Text, "SHORT 🟥") {
		t.Errorf("short alert missing red emoji:\n%s", msg.Text)
	}
}

func TestPriceAlertButtons(t *testing.T) {
	msg := PriceAlert("BTC-USDT", "entry_2", 44100, 44080, "long", 250,
		"https://app.example.com/trade", "https://app.example.com/remove")

	if !strings.Contains(msg.Text, "Price Alert Triggered") {
		t.Errorf("unexpected text:\n%s", msg.Text)
	}
	if !strings.Contains(msg.Text, "(ENTRY 2)") {
		t.Errorf("entry type not upper-cased: %s", msg.Text)
	}
	if len(msg.Buttons) != 1 || len(msg.Buttons[0]) != 2 {
		t.Fatalf("expected one row of two buttons, got %+v", msg.Buttons)
	}
	if msg.Buttons[0][0].Text != "📈 Open LONG" {
		t.Errorf("open button = %q", msg.Buttons[0][0].Text)
	}
	if msg.Buttons[0][1].Text != "🗑️ Remove Alert" {
		t.Errorf("remove button = %q", msg.Buttons[0][1].Text)
	}
}

func TestPriceAlertWithoutURLsHasNoButtons(t *testing.T) {
	msg := PriceAlert("BTC-USDT", "market", 44100, 44080, "short", 250, "", "")
	if len(msg.Buttons) != 0 {
		t.Errorf("expected no buttons, got %+v", msg.Buttons)
	}
}

func TestStopLossTriggered(t *testing.T) {
	msg := StopLossTriggered("BTC-USDT", "LONG", 45000, 44000, 43900, -14.67, 6)
	for _, want := range []string{
		"🔴 <b>Stop Loss Triggered</b>",
		"Symbol: BTC-USDT",
		"Stop Loss: 44000",
		"Close Price: 43900",
		"P&L: -14.67%",
		"Leverage: 6x",
	} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("message missing %q:\n%s", want, msg.Text)
		}
	}
}

func TestTargetReachedVariants(t *testing.T) {
	notify := TargetReached("BTC-USDT", "LONG", 100, 102, 12, 10, 6, false)
	if !strings.Contains(notify.Text, "🎯 <b>Target Reached</b>") {
		t.Errorf("notify header wrong:\n%s", notify.Text)
	}
	if !strings.Contains(notify.Text, "Current Price: 102") {
		t.Errorf("notify shows the current price:\n%s", notify.Text)
	}
	if !strings.Contains(notify.Text, "Close this position manually in the app.") {
		t.Errorf("notify asks for a manual close:\n%s", notify.Text)
	}

	auto := TargetReached("BTC-USDT", "LONG", 100, 102, 12, 10, 6, true)
	if !strings.Contains(auto.Text, "🟢 <b>Target Reached - Auto Closed</b>") {
		t.Errorf("auto header wrong:\n%s", auto.Text)
	}
	if !strings.Contains(auto.Text, "Close Price: 102") {
		t.Errorf("auto shows the close price:\n%s", auto.Text)
	}
	if strings.Contains(auto.Text, "manually") {
		t.Errorf("auto close must not ask for a manual close:\n%s", auto.Text)
	}
}

func TestEmergencyStop(t *testing.T) {
	msg := EmergencyStop("BTC-USDT", "LONG", 100, 90, -60, 6)
	for _, want := range []string{
		"🚨 <b>Emergency Stop Loss</b>",
		"P&L: -60.00%",
		"Position closed to prevent further losses.",
	} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("message missing %q:\n%s", want, msg.Text)
		}
	}
}

func TestPnLMilestone(t *testing.T) {
	profit := PnLMilestone("BTC-USDT", "LONG", "profit", 25, 26.3, 132.5)
	if !strings.Contains(profit.Text, "PROFIT Milestone Reached") {
		t.Errorf("profit milestone text wrong:\n%s", profit.Text)
	}
	if !strings.Contains(profit.Text, "26.30%") {
		t.Errorf("current percent not rendered: %s", profit.Text)
	}

	loss := PnLMilestone("BTC-USDT", "SHORT", "loss", -25, -26.3, -132.5)
	if !strings.Contains(loss.Text, "LOSS Milestone Reached") {
		t.Errorf("loss milestone text wrong:\n%s", loss.Text)
	}
}

func TestBalanceChange(t *testing.T) {
	up := BalanceChange("increase", 7.5, 1000, 1075, 75)
	if !strings.Contains(up.Text, "increased") || !strings.Contains(up.Text, "📈") {
		t.Errorf("increase alert wrong:\n%s", up.Text)
	}
	down := BalanceChange("decrease", 6.0, 1000, 940, 60)
	if !strings.Contains(down.Text, "decreased") || !strings.Contains(down.Text, "📉") {
		t.Errorf("decrease alert wrong:\n%s", down.Text)
	}
}

func TestIchiAlertCrossDirection(t *testing.T) {
	before := IchiAlert("BTC-USDT", "LONG", "45000", "ICHIMOKU_BEFORE_CROSS")
	if !strings.Contains(before.Text, "Cross Ahead") {
		t.Errorf("before-cross alert wrong:\n%s", before.Text)
	}
	after := IchiAlert("BTC-USDT", "LONG", "45000", "ICHIMOKU_AFTER_CROSS")
	if !strings.Contains(after.Text, "Cross Passed") {
		t.Errorf("after-cross alert wrong:\n%s", after.Text)
	}
}

func TestHitCrossAlertDepth(t *testing.T) {
	msg := HitCrossAlert("BTC-USDT", "LONG", "HM", "45000 | 44500")
	if !strings.Contains(msg.Text, "25%, 50%") {
		t.Errorf("depth not expanded:\n%s", msg.Text)
	}
	if !strings.Contains(msg.Text, "45000\n44500") {
		t.Errorf("prices not reformatted onto lines:\n%s", msg.Text)
	}
	if !strings.Contains(msg.Text, "🟧🟧🟨🟨⬜⬜⬜⬜") {
		t.Errorf("progress bar missing:\n%s", msg.Text)
	}
}
