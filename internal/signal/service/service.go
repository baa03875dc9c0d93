package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/xempie/trade-sub002/internal/api/dto"
	bingx "github.com/xempie/trade-sub002/internal/bingx/service"
	"github.com/xempie/trade-sub002/internal/order"
	"github.com/xempie/trade-sub002/internal/signal"
	"github.com/xempie/trade-sub002/internal/signal/repository"
	"github.com/xempie/trade-sub002/internal/telegram"
)

// Alert types accepted on the webhook.
const (
	TypeTradingSignal = "TRADING_SIGNAL"
	TypeLNLSignal     = "LNL_SIGNAL"
	TypeFVGTouch      = "FVGTOUCH"
	TypeFVG           = "FVG"
	TypeTriggerCross  = "TRIGGER_CROSS"
	TypeT3SSL         = "T3_SSL"
	TypeIchiBefore    = "ICHIMOKU_BEFORE_CROSS"
	TypeIchiAfter     = "ICHIMOKU_AFTER_CROSS"
	TypeInTrend       = "IN_TREND"
	TypeUpTrend       = "UP_TREND"
)

// Pricing resolves the current market price for a contract symbol.
type Pricing interface {
	Price(ctx context.Context, symbol string) (float64, error)
}

// Notifier delivers chat messages; satisfied by *telegram.Sender.
type Notifier interface {
	Send(ctx context.Context, msg telegram.Message) telegram.Result
	SendTyped(ctx context.Context, alertType string, msg telegram.Message) telegram.Result
}

// Trader places exchange orders for imported signals. Optional; left nil
// when auto trading is disabled.
type Trader interface {
	PlaceEntryOrders(ctx context.Context, sig *signal.Signal) ([]*order.Order, error)
}

type Service struct {
	Repo            repository.SignalRepository
	Pricing         Pricing
	Notifier        Notifier
	Trader          Trader
	DefaultLeverage int
}

func NewService(repo repository.SignalRepository, pricing Pricing, notifier Notifier, defaultLeverage int) *Service {
	if defaultLeverage <= 0 {
		defaultLeverage = 6
	}
	return &Service{
		Repo:            repo,
		Pricing:         pricing,
		Notifier:        notifier,
		DefaultLeverage: defaultLeverage,
	}
}

// ProcessedEntries mirrors the entry columns as stored.
type ProcessedEntries struct {
	EntryMarket float64  `json:"entry_market"`
	Entry2      *float64 `json:"entry_2"`
	Entry3      *float64 `json:"entry_3"`
}

// ProcessedTargets mirrors the take-profit columns as stored.
type ProcessedTargets struct {
	TakeProfit1 *float64 `json:"take_profit_1"`
	TakeProfit2 *float64 `json:"take_profit_2"`
	TakeProfit3 *float64 `json:"take_profit_3"`
	TakeProfit4 *float64 `json:"take_profit_4"`
	TakeProfit5 *float64 `json:"take_profit_5"`
}

// ProcessedData is echoed back to import callers.
type ProcessedData struct {
	Symbol   string           `json:"symbol"`
	Side     string           `json:"side"`
	Leverage int              `json:"leverage"`
	Entries  ProcessedEntries `json:"entries"`
	Targets  ProcessedTargets `json:"targets"`
	StopLoss float64          `json:"stop_loss"`
	Source   string           `json:"source"`
}

// ImportResult is the outcome of storing a normalized signal.
type ImportResult struct {
	SignalID  int64
	Processed ProcessedData
}

// ExportStatus records whether the import step of a webhook succeeded.
type ExportStatus struct {
	Success  bool   `json:"success"`
	SignalID int64  `json:"signal_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// WebhookResult is the success payload of a processed webhook.
type WebhookResult struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Type     string           `json:"type"`
	Export   *ExportStatus    `json:"export,omitempty"`
	Telegram *telegram.Result `json:"telegram,omitempty"`
}

// Import resolves percentage tokens against the first entry and stores the
// signal. Replays are not deduplicated; each call creates a new row.
func (s *Service) Import(ctx context.Context, req dto.ImportSignalRequest) (*ImportResult, error) {
	side := strings.ToUpper(strings.TrimSpace(req.Side))
	if side != "LONG" && side != "SHORT" {
		return nil, fmt.Errorf("field 'side' must be 'LONG' or 'SHORT'")
	}
	if len(req.Entries) == 0 {
		return nil, fmt.Errorf("field 'entries' must be a non-empty array")
	}
	if len(req.Entries) > 3 {
		return nil, fmt.Errorf("maximum 3 entries allowed")
	}
	if len(req.Targets) == 0 {
		return nil, fmt.Errorf("field 'targets' must be a non-empty array")
	}
	if len(req.Targets) > 5 {
		return nil, fmt.Errorf("maximum 5 targets allowed")
	}
	if req.Leverage < 1 || req.Leverage > 100 {
		return nil, fmt.Errorf("leverage must be between 1 and 100")
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	isLong := side == "LONG"

	entries := make([]float64, len(req.Entries))
	for i, e := range req.Entries {
		v, err := strconv.ParseFloat(strings.TrimSpace(e.Raw), 64)
		if err != nil {
			return nil, fmt.Errorf("entry %d is not a number: %q", i+1, e.Raw)
		}
		entries[i] = v
	}
	entryPrice := entries[0]

	var takeProfits [5]*float64
	for i := 0; i < len(req.Targets) && i < 5; i++ {
		v := ResolvePrice(req.Targets[i].Raw, entryPrice, isLong, true)
		takeProfits[i] = &v
	}

	stopRaw := "5%"
	if len(req.StopLoss) > 0 {
		stopRaw = req.StopLoss[0].Raw
	}
	stopLoss := ResolvePrice(stopRaw, entryPrice, isLong, false)

	sig := &signal.Signal{
		Symbol:           symbol,
		Side:             side,
		EntryMarketPrice: entries[0],
		TakeProfit1:      takeProfits[0],
		TakeProfit2:      takeProfits[1],
		TakeProfit3:      takeProfits[2],
		TakeProfit4:      takeProfits[3],
		TakeProfit5:      takeProfits[4],
		StopLoss:         stopLoss,
		Leverage:         req.Leverage,
		SourceName:       "JSON Import",
		ConfidenceScore:  req.ConfidenceScore,
		RiskRewardRatio:  req.RiskRewardRatio,
		AutoCreated:      true,
		Status:           signal.StatusActive,
	}
	if len(entries) > 1 {
		sig.Entry2 = &entries[1]
	}
	if len(entries) > 2 {
		sig.Entry3 = &entries[2]
	}
	if req.ExternalSignalID != "" {
		sig.ExternalSignalID = &req.ExternalSignalID
	}
	if req.Notes != "" {
		sig.Notes = &req.Notes
	}

	if err := s.Repo.Save(ctx, sig); err != nil {
		return nil, fmt.Errorf("failed to save signal: %w", err)
	}

	return &ImportResult{
		SignalID: sig.ID,
		Processed: ProcessedData{
			Symbol:   symbol,
			Side:     side,
			Leverage: req.Leverage,
			Entries: ProcessedEntries{
				EntryMarket: entries[0],
				Entry2:      sig.Entry2,
				Entry3:      sig.Entry3,
			},
			Targets: ProcessedTargets{
				TakeProfit1: takeProfits[0],
				TakeProfit2: takeProfits[1],
				TakeProfit3: takeProfits[2],
				TakeProfit4: takeProfits[3],
				TakeProfit5: takeProfits[4],
			},
			StopLoss: stopLoss,
			Source:   "JSON Import",
		},
	}, nil
}

// ActiveSignals lists the signals still marked active, newest first.
func (s *Service) ActiveSignals(ctx context.Context) ([]*signal.Signal, error) {
	return s.Repo.GetActive(ctx)
}

// ArchiveSignal retires a signal from the active set.
func (s *Service) ArchiveSignal(ctx context.Context, id int64) error {
	return s.Repo.Archive(ctx, id)
}

// ProcessWebhook classifies the alert, fires the matching notification and,
// for trading-signal types, normalizes and imports the signal.
func (s *Service) ProcessWebhook(ctx context.Context, req dto.WebhookRequest) (*WebhookResult, error) {
	alertType := strings.ToUpper(strings.TrimSpace(req.Type))
	if alertType == "" {
		if len(req.Entries) > 0 && len(req.Targets) > 0 {
			alertType = TypeTradingSignal
		} else {
			return nil, fmt.Errorf("field 'type' is required")
		}
	}

	if strings.TrimSpace(req.Symbol) == "" {
		return nil, fmt.Errorf("field 'symbol' is required")
	}
	if strings.TrimSpace(req.Side) == "" {
		return nil, fmt.Errorf("field 'side' is required")
	}

	symbol := bingx.FormatSymbol(req.Symbol)
	side := strings.ToUpper(strings.TrimSpace(req.Side))

	switch alertType {
	case TypeLNLSignal, TypeFVGTouch, TypeFVG:
		entry := 0.0
		if req.Entry != nil {
			entry = *req.Entry
		} else if req.Price != nil {
			entry = *req.Price
		}
		result := s.Notifier.SendTyped(ctx, TypeFVG, telegram.FVGAlert(symbol, side, alertType, entry))
		return &WebhookResult{Success: true, Message: "FVG alert sent", Type: alertType, Telegram: &result}, nil

	case TypeT3SSL:
		result := s.Notifier.Send(ctx, telegram.BaselineAlert(symbol, side, req.Prices))
		return &WebhookResult{Success: true, Message: "Baseline alert sent", Type: alertType, Telegram: &result}, nil

	case TypeTriggerCross:
		s.Notifier.Send(ctx, telegram.HitCrossAlert(symbol, side, req.Levels, req.Prices))
		return s.processTradingSignal(ctx, alertType, symbol, side, req)

	case TypeIchiBefore, TypeIchiAfter:
		s.Notifier.SendTyped(ctx, alertType, telegram.IchiAlert(symbol, side, req.Prices, alertType))
		return s.processTradingSignal(ctx, alertType, symbol, side, req)

	case TypeInTrend, TypeUpTrend:
		if err := validateAdaptive(req); err != nil {
			return nil, err
		}
		s.Notifier.SendTyped(ctx, alertType, telegram.AdaptiveAlert(
			symbol, side, *req.Entry, *req.CandleSize, *req.DistanceToT3,
			req.CandlePosition, *req.DistanceToTrendStart))
		return s.processTradingSignal(ctx, alertType, symbol, side, req)

	case TypeTradingSignal:
		return s.processTradingSignal(ctx, alertType, symbol, side, req)

	default:
		return nil, fmt.Errorf("unknown signal type: %s", alertType)
	}
}

func validateAdaptive(req dto.WebhookRequest) error {
	missing := []string{}
	if req.Entry == nil {
		missing = append(missing, "entry")
	}
	if req.CandleSize == nil {
		missing = append(missing, "candle_size")
	}
	if req.DistanceToT3 == nil {
		missing = append(missing, "distance_to_t3")
	}
	if req.CandlePosition == "" {
		missing = append(missing, "candle_position")
	}
	if req.DistanceToTrendStart == nil {
		missing = append(missing, "distance_to_trend_start")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (s *Service) processTradingSignal(ctx context.Context, alertType, symbol, side string, req dto.WebhookRequest) (*WebhookResult, error) {
	if side != "LONG" && side != "SHORT" {
		return nil, fmt.Errorf("field 'side' must be 'LONG' or 'SHORT'")
	}
	isLong := side == "LONG"

	leverage := s.DefaultLeverage
	if req.Leverage != nil && *req.Leverage > 0 {
		leverage = *req.Leverage
	}

	entries := req.Entries
	if len(entries) == 0 {
		market, err := s.Pricing.Price(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to get market price for %s: %w", symbol, err)
		}
		factor := 0.98
		if !isLong {
			factor = 1.02
		}
		entries = dto.PriceList{
			{Raw: strconv.FormatFloat(market, 'f', -1, 64)},
			{Raw: strconv.FormatFloat(market*factor, 'f', -1, 64)},
		}
	}
	if len(entries) > 3 {
		entries = entries[:3]
	}

	targets := req.Targets
	if len(targets) == 0 {
		targets = dto.PriceList{{Raw: "2%"}}
	}
	if len(targets) > 5 {
		targets = targets[:5]
	}

	stopLoss := req.StopLoss
	if len(stopLoss) == 0 {
		stopLoss = dto.PriceList{{Raw: "5%"}}
	}

	importReq := dto.ImportSignalRequest{
		Symbol:           symbol,
		Side:             side,
		Leverage:         leverage,
		Entries:          entries,
		Targets:          targets,
		StopLoss:         stopLoss,
		ExternalSignalID: req.ExternalSignalID,
		Notes:            req.Notes,
	}
	if req.ConfidenceScore != nil {
		importReq.ConfidenceScore = *req.ConfidenceScore
	}
	if req.RiskRewardRatio != nil {
		importReq.RiskRewardRatio = *req.RiskRewardRatio
	}

	// Import failure is folded into the response; the alert still goes out.
	export := &ExportStatus{}
	imported, err := s.Import(ctx, importReq)
	if err != nil {
		log.Printf("Signal export failed for %s: %v", symbol, err)
		export.Error = err.Error()
	} else {
		export.Success = true
		export.SignalID = imported.SignalID
		s.autoTrade(ctx, imported.SignalID)
	}

	var alert telegram.TradingSignal
	if imported != nil {
		p := imported.Processed
		alert = telegram.TradingSignal{
			Symbol:      symbol,
			Side:        side,
			Leverage:    leverage,
			EntryMarket: p.Entries.EntryMarket,
			Entry2:      p.Entries.Entry2,
			Entry3:      p.Entries.Entry3,
			StopLoss:    p.StopLoss,
		}
		for _, tp := range []*float64{
			p.Targets.TakeProfit1, p.Targets.TakeProfit2, p.Targets.TakeProfit3,
			p.Targets.TakeProfit4, p.Targets.TakeProfit5,
		} {
			if tp != nil {
				alert.TakeProfits = append(alert.TakeProfits, *tp)
			}
		}
	} else {
		alert = s.buildAlertLocally(symbol, side, leverage, entries, targets, stopLoss, isLong)
	}

	tgResult := s.Notifier.Send(ctx, telegram.TradingSignalAlert(alert))

	return &WebhookResult{
		Success:  true,
		Message:  "Signal processed",
		Type:     alertType,
		Export:   export,
		Telegram: &tgResult,
	}, nil
}

// autoTrade submits entry orders for a freshly imported signal. Failures
// are logged only; order placement never blocks the alert path.
func (s *Service) autoTrade(ctx context.Context, signalID int64) {
	if s.Trader == nil {
		return
	}
	sig, err := s.Repo.GetByID(ctx, signalID)
	if err != nil {
		log.Printf("Auto trade: load signal %d: %v", signalID, err)
		return
	}
	if _, err := s.Trader.PlaceEntryOrders(ctx, sig); err != nil {
		log.Printf("Auto trade: place orders for signal %d: %v", signalID, err)
	}
}

// buildAlertLocally resolves prices for the notification when the import
// step failed; the alert must still reflect the computed levels.
func (s *Service) buildAlertLocally(symbol, side string, leverage int, entries, targets, stopLoss dto.PriceList, isLong bool) telegram.TradingSignal {
	entryPrice, _ := strconv.ParseFloat(strings.TrimSpace(entries[0].Raw), 64)

	alert := telegram.TradingSignal{
		Symbol:      symbol,
		Side:        side,
		Leverage:    leverage,
		EntryMarket: entryPrice,
	}
	if len(entries) > 1 {
		v, _ := strconv.ParseFloat(strings.TrimSpace(entries[1].Raw), 64)
		alert.Entry2 = &v
	}
	if len(entries) > 2 {
		v, _ := strconv.ParseFloat(strings.TrimSpace(entries[2].Raw), 64)
		alert.Entry3 = &v
	}
	for _, t := range targets {
		alert.TakeProfits = append(alert.TakeProfits, ResolvePrice(t.Raw, entryPrice, isLong, true))
	}
	if len(stopLoss) > 0 {
		alert.StopLoss = ResolvePrice(stopLoss[0].Raw, entryPrice, isLong, false)
	}
	return alert
}
