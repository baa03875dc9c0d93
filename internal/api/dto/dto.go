package dto

import (
	"encoding/json"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// PriceValue accepts either a JSON number or a string (possibly a
// percentage token like "2%") and keeps the raw text form.
type PriceValue struct {
	Raw string
}

func (p *PriceValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		p.Raw = s
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	p.Raw = strconv.FormatFloat(f, 'f', -1, 64)
	return nil
}

func (p PriceValue) MarshalJSON() ([]byte, error) {
	if f, err := strconv.ParseFloat(p.Raw, 64); err == nil {
		return json.Marshal(f)
	}
	return json.Marshal(p.Raw)
}

// PriceList accepts a JSON array, a bare scalar, or null.
type PriceList []PriceValue

func (l *PriceList) UnmarshalJSON(b []byte) error {
	var arr []PriceValue
	if err := json.Unmarshal(b, &arr); err == nil {
		*l = arr
		return nil
	}
	var one PriceValue
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*l = PriceList{one}
	return nil
}

// WebhookRequest is the inbound alert payload. Which fields are required
// depends on the alert type; that is validated in the signal service.
type WebhookRequest struct {
	Symbol   string    `json:"symbol"`
	Side     string    `json:"side"`
	Type     string    `json:"type"`
	Leverage *int      `json:"leverage"`
	Entries  PriceList `json:"entries"`
	Targets  PriceList `json:"targets"`
	StopLoss PriceList `json:"stop_loss"`

	// Adaptive (trend) alert fields
	Entry                *float64 `json:"entry"`
	CandleSize           *float64 `json:"candle_size"`
	DistanceToT3         *float64 `json:"distance_to_t3"`
	CandlePosition       string   `json:"candle_position"`
	DistanceToTrendStart *float64 `json:"distance_to_trend_start"`

	// FVG alert fields
	Price     *float64 `json:"price"`
	Prices    string   `json:"prices"`
	Timeframe string   `json:"timeframe"`
	Levels    string   `json:"levels"`

	// Optional metadata forwarded to the import step
	ExternalSignalID string   `json:"external_signal_id"`
	ConfidenceScore  *float64 `json:"confidence_score"`
	Notes            string   `json:"notes"`
	RiskRewardRatio  *float64 `json:"risk_reward_ratio"`
}

// ImportSignalRequest is the normalized signal for the import endpoint.
type ImportSignalRequest struct {
	Symbol           string    `json:"symbol" validate:"required"`
	Side             string    `json:"side" validate:"required,oneof=LONG SHORT"`
	Leverage         int       `json:"leverage" validate:"required,min=1,max=100"`
	Entries          PriceList `json:"entries" validate:"required,min=1,max=3"`
	Targets          PriceList `json:"targets" validate:"required,min=1,max=5"`
	StopLoss         PriceList `json:"stop_loss" validate:"required,min=1"`
	ExternalSignalID string    `json:"external_signal_id"`
	ConfidenceScore  float64   `json:"confidence_score"`
	Notes            string    `json:"notes"`
	RiskRewardRatio  float64   `json:"risk_reward_ratio"`
}

// WatchlistItemInput fields are optional here; the handler silently skips
// incomplete items instead of rejecting the whole batch.
type WatchlistItemInput struct {
	EntryType    string   `json:"entry_type"`
	EntryPrice   float64  `json:"entry_price" validate:"omitempty,gt=0"`
	MarginAmount float64  `json:"margin_amount" validate:"omitempty,gt=0"`
	Percentage   *float64 `json:"percentage"`
	InitialPrice *float64 `json:"initial_price"`
}

type CreateWatchlistRequest struct {
	Symbol    string               `json:"symbol" validate:"required"`
	Direction string               `json:"direction" validate:"required,oneof=long short"`
	Items     []WatchlistItemInput `json:"watchlist_items" validate:"required,min=1,dive"`
}

type UpdateWatchlistRequest struct {
	Status string `json:"status" validate:"required,oneof=active triggered cancelled"`
}

type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

var Validate = validator.New()
