package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TradingSignal carries the fields rendered into the signal alert message.
type TradingSignal struct {
	Symbol      string
	Side        string
	Leverage    int
	EntryMarket float64
	Entry2      *float64
	Entry3      *float64
	TakeProfits []float64
	StopLoss    float64
}

func sideEmoji(side string) string {
	if side == "LONG" {
		return "🟩"
	}
	return "🟥"
}

// TradingSignalAlert renders the main signal notification.
func TradingSignalAlert(s TradingSignal) Message {
	clean := strings.ReplaceAll(s.Symbol, "-USDT", "")

	var b strings.Builder
	b.WriteString("<b>🚨 TRADING SIGNAL ALERT</b>\n\n")
	fmt.Fprintf(&b, "<b>Symbol:</b> %s\n", clean)
	fmt.Fprintf(&b, "<b>Side:</b> %s %s\n", s.Side, sideEmoji(s.Side))
	fmt.Fprintf(&b, "<b>Leverage:</b> %dx\n\n", s.Leverage)

	b.WriteString("<b>📊 Entry Points:</b>\n")
	fmt.Fprintf(&b, "Market: $%s\n", formatMoney(s.EntryMarket))
	if s.Entry2 != nil {
		fmt.Fprintf(&b, "Entry 2: $%s\n", formatMoney(*s.Entry2))
	}
	if s.Entry3 != nil {
		fmt.Fprintf(&b, "Entry 3: $%s\n", formatMoney(*s.Entry3))
	}

	b.WriteString("\n<b>🎯 Targets:</b>\n")
	for i, tp := range s.TakeProfits {
		if tp > 0 {
			fmt.Fprintf(&b, "TP%d: $%s\n", i+1, formatMoney(tp))
		}
	}

	fmt.Fprintf(&b, "\n<b>🛑 Stop Loss:</b> $%s\n", formatMoney(s.StopLoss))
	fmt.Fprintf(&b, "\n⏰ <i>%s UTC</i>", time.Now().UTC().Format("2006-01-02 15:04:05"))

	return Message{Text: b.String()}
}

// HitCrossAlert renders the FVG price-hit message with the level depth bar.
func HitCrossAlert(symbol, side, levels, prices string) Message {
	formattedPrices := strings.ReplaceAll(prices, " | ", "\n")
	depth := strings.NewReplacer("H", "25%, ", "M", "50%, ", "L", "75%, ").Replace(strings.ToUpper(levels))
	depth = strings.TrimSuffix(depth, ", ")

	text := "<b>💥 FVG Price Hit Alert</b>\n\n" +
		"<b>Symbol:</b> " + symbol + "\n" +
		"<b>Side:</b> " + side + " " + sideEmoji(side) + "\n\n" +
		"<b>FVG Hit Depth:</b> " + depth + "\n\n" +
		"<b>Triggers:</b> " + formattedPrices + "\n\n" +
		"<i>Consider 5-minute timeframe</i>\n\n" +
		FVGProgressBar(levels) + "\n"
	return Message{Text: text}
}

// BaselineAlert renders the T3/SSL baseline cross message.
func BaselineAlert(symbol, side, price string) Message {
	formattedPrices := strings.ReplaceAll(price, " | ", "\n")
	text := "<b>⚔️🤝 Cross Pattern Hit Alert</b>\n\n" +
		"<b>Symbol:</b> " + symbol + "\n" +
		"<b>Side:</b> " + side + " " + sideEmoji(side) + "\n\n" +
		"<b>Entry:</b> " + formattedPrices + "\n\n"
	return Message{Text: text}
}

// IchiAlert renders the ichimoku cross message.
func IchiAlert(symbol, side, price, alertType string) Message {
	formattedPrices := strings.ReplaceAll(price, " | ", "\n")
	exp := "Cross Ahead"
	if alertType == "ICHIMOKU_AFTER_CROSS" {
		exp = "Cross Passed"
	}
	text := "<b>🔀 ICHI Cross Alert</b>\n\n" +
		"<b>Symbol:</b> " + symbol + "\n" +
		"<b>Side:</b> " + side + " " + sideEmoji(side) + "\n\n" +
		"<b>Type:</b> " + exp + "\n\n" +
		"<b>Entry:</b> " + formattedPrices + "\n\n"
	return Message{Text: text}
}

// FVGAlert renders box-touch / LNL cross messages.
func FVGAlert(symbol, side, alertType string, entry float64) Message {
	var b strings.Builder
	if alertType == "FVGTOUCH" {
		b.WriteString("<b>♒ FVG Box Touched</b>\n\n")
	} else {
		b.WriteString("<b>🔀 LNL Cross Signal</b>\n\n")
	}
	b.WriteString("====================\n")
	fmt.Fprintf(&b, "<b>Symbol:</b> %s\n", symbol)
	fmt.Fprintf(&b, "<b>Side:</b> %s %s\n\n", side, sideEmoji(side))
	fmt.Fprintf(&b, "<b>Entry:</b> $%s\n", formatPrice(entry))
	return Message{Text: b.String()}
}

// AdaptiveAlert renders the SSL/RSI trend alert sent to the admin channels.
func AdaptiveAlert(symbol, side string, entry, candleSize, distanceToT3 float64, candlePosition string, distanceToTrendStart float64) Message {
	clean := strings.ReplaceAll(symbol, "-USDT", "")
	trendIcon := ""
	if int(distanceToTrendStart) == 0 {
		trendIcon = "💠"
	}

	var b strings.Builder
	b.WriteString("🚨 SSL/RSI ADAPTIVE ALERT\n\n")
	fmt.Fprintf(&b, "Symbol: <b>%s</b>\n", clean)
	fmt.Fprintf(&b, "Side: %s %s\n", side, sideEmoji(side))
	fmt.Fprintf(&b, "Entry: %s\n\n", formatPrice(entry))
	b.WriteString("📊 Candle Data:\n")
	b.WriteString("====================\n")
	fmt.Fprintf(&b, "Size: %s\n", formatPrice(candleSize))
	fmt.Fprintf(&b, "Distance to T3: %s\n", formatPrice(distanceToT3))
	fmt.Fprintf(&b, "Position: %s\n", candlePosition)
	fmt.Fprintf(&b, "Trend Start: %d candles ago %s\n", int(distanceToTrendStart), trendIcon)
	return Message{Text: b.String()}
}

// OrderFilled renders the fill notification.
func OrderFilled(symbol, side string, quantity, fillPrice float64, leverage int, entryLevel string) Message {
	emoji := "📈"
	if side == "SELL" {
		emoji = "📉"
	}
	level := strings.ReplaceAll(strings.ToUpper(entryLevel), "_", " ")

	text := "<b>Order Filled!</b>\n\n" +
		emoji + " <b>" + symbol + "</b> (" + level + ")\n" +
		"💰 Size: $" + formatPrice(quantity) + "\n" +
		"💵 Fill Price: $" + formatPrice(fillPrice) + "\n" +
		"⚡ Leverage: " + strconv.Itoa(leverage) + "x\n" +
		"🎯 Side: " + strings.ToUpper(side)
	return Message{Text: "🚨 " + text}
}

// OrderCancelled renders the cancel notification.
func OrderCancelled(symbol string, quantity, price float64, side string) Message {
	text := "<b>Order Cancelled</b>\n\n" +
		"❌ <b>" + symbol + "</b>\n" +
		"💰 Size: $" + formatPrice(quantity) + "\n" +
		"💵 Price: $" + formatPrice(price) + "\n" +
		"🎯 Side: " + strings.ToUpper(side)
	return Message{Text: "💰 " + text}
}

// BalanceChange renders the account balance movement notification.
func BalanceChange(changeType string, changePercent, oldTotal, newTotal, changeAmount float64) Message {
	emoji, direction := "📈", "increased"
	if changeType == "decrease" {
		emoji, direction = "📉", "decreased"
	}

	text := "<b>Balance Change Alert</b>\n\n" +
		emoji + " Account balance has " + direction + "\n" +
		"📊 Change: " + formatPercent(changePercent) + "%\n" +
		"💰 From: $" + formatMoney(oldTotal) + "\n" +
		"💰 To: $" + formatMoney(newTotal) + "\n" +
		"📊 Difference: $" + formatMoney(changeAmount)
	return Message{Text: "💰 " + text}
}

// PnLMilestone renders the profit/loss milestone notification.
func PnLMilestone(symbol, side, milestoneType string, milestonePercent, currentPercent, pnlAmount float64) Message {
	emoji, direction := "💰", "PROFIT"
	if milestoneType == "loss" {
		emoji, direction = "📉", "LOSS"
	}

	text := "<b>" + direction + " Milestone Reached!</b>\n\n" +
		emoji + " <b>" + symbol + "</b> (" + strings.ToUpper(side) + ")\n" +
		"🎯 Milestone: " + formatPercent(milestonePercent) + "%\n" +
		"📊 Current P&L: " + formatPercent(currentPercent) + "%\n" +
		"💵 P&L Amount: $" + formatMoney(pnlAmount)
	return Message{Text: "💰 " + text}
}

// StopLossTriggered renders the auto-close notification for a hit stop.
func StopLossTriggered(symbol, side string, entry, stop, closePrice, pnlPercent float64, leverage int) Message {
	text := "🔴 <b>Stop Loss Triggered</b>\n\n" +
		"Symbol: " + symbol + "\n" +
		"Side: " + side + "\n" +
		"Entry Price: " + formatPrice(entry) + "\n" +
		"Stop Loss: " + formatPrice(stop) + "\n" +
		"Close Price: " + formatPrice(closePrice) + "\n" +
		"P&L: " + formatPercent(pnlPercent) + "%\n" +
		"Leverage: " + strconv.Itoa(leverage) + "x\n"
	return Message{Text: text}
}

// TargetReached renders the target notification. The auto-closed variant
// reports the close price; the plain one asks for a manual close.
func TargetReached(symbol, side string, entry, currentPrice, pnlPercent, targetPercent float64, leverage int, autoClosed bool) Message {
	if autoClosed {
		return Message{Text: "🟢 <b>Target Reached - Auto Closed</b>\n\n" +
			"Symbol: " + symbol + "\n" +
			"Side: " + side + "\n" +
			"Entry Price: " + formatPrice(entry) + "\n" +
			"Close Price: " + formatPrice(currentPrice) + "\n" +
			"P&L: " + formatPercent(pnlPercent) + "%\n" +
			"Target: " + formatPercent(targetPercent) + "%\n" +
			"Leverage: " + strconv.Itoa(leverage) + "x\n"}
	}
	return Message{Text: "🎯 <b>Target Reached</b>\n\n" +
		"Symbol: " + symbol + "\n" +
		"Side: " + side + "\n" +
		"Entry Price: " + formatPrice(entry) + "\n" +
		"Current Price: " + formatPrice(currentPrice) + "\n" +
		"P&L: " + formatPercent(pnlPercent) + "%\n" +
		"Target: " + formatPercent(targetPercent) + "%\n" +
		"Leverage: " + strconv.Itoa(leverage) + "x\n\n" +
		"Close this position manually in the app."}
}

// EmergencyStop renders the forced-close notification for runaway losses.
func EmergencyStop(symbol, side string, entry, closePrice, pnlPercent float64, leverage int) Message {
	text := "🚨 <b>Emergency Stop Loss</b>\n\n" +
		"Symbol: " + symbol + "\n" +
		"Side: " + side + "\n" +
		"Entry Price: " + formatPrice(entry) + "\n" +
		"Close Price: " + formatPrice(closePrice) + "\n" +
		"P&L: " + formatPercent(pnlPercent) + "%\n" +
		"Leverage: " + strconv.Itoa(leverage) + "x\n\n" +
		"Position closed to prevent further losses."
	return Message{Text: text}
}

// PriceAlert renders the watchlist trigger message with action buttons.
func PriceAlert(symbol, entryType string, targetPrice, currentPrice float64, direction string, marginAmount float64, openURL, removeURL string) Message {
	dirEmoji := "📈"
	if direction == "short" {
		dirEmoji = "📉"
	}
	entryTypeFormatted := strings.ReplaceAll(strings.ToUpper(entryType), "_", " ")

	text := "<b>Price Alert Triggered!</b>\n\n" +
		dirEmoji + " <b>" + symbol + "</b> (" + entryTypeFormatted + ")\n" +
		"🎯 Target: $" + formatPrice(targetPrice) + "\n" +
		"💰 Current: $" + formatPrice(currentPrice) + "\n" +
		"📊 Direction: " + strings.ToUpper(direction) + "\n" +
		"💵 Margin: $" + formatMoney(marginAmount)

	openLabel := "📈 Open LONG"
	if direction == "short" {
		openLabel = "📉 Open SHORT"
	}

	msg := Message{Text: "🚨 " + text}
	if openURL != "" || removeURL != "" {
		row := []Button{}
		if openURL != "" {
			row = append(row, Button{Text: openLabel, URL: openURL})
		}
		if removeURL != "" {
			row = append(row, Button{Text: "🗑️ Remove Alert", URL: removeURL})
		}
		msg.Buttons = [][]Button{row}
	}
	return msg
}

// ErrorAlert renders the bot error notification.
func ErrorAlert(errMessage, context string) Message {
	text := "🚨 <b>Bot Error Alert</b>\n\n" +
		"<b>Error:</b> " + errMessage + "\n" +
		"<b>Context:</b> " + context + "\n" +
		"⏰ <i>" + time.Now().UTC().Format("2006-01-02 15:04:05") + " UTC</i>"
	return Message{Text: text}
}

// formatMoney renders with thousands separators and two decimals, the way
// the alerts have always shown dollar amounts.
func formatMoney(f float64) string {
	neg := f < 0
	if neg {
		f = -f
	}
	s := strconv.FormatFloat(f, 'f', 2, 64)

	dot := strings.IndexByte(s, '.')
	intPart, fracPart := s[:dot], s[dot:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + fracPart
	if neg {
		return "-" + out
	}
	return out
}

func formatPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatPercent(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
