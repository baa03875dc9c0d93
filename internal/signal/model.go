package signal

import "time"

// Statuses a signal can be in. Signals are immutable after creation except
// for this flag.
const (
	StatusActive   = "ACTIVE"
	StatusArchived = "ARCHIVED"
)

type Signal struct {
	ID               int64
	Symbol           string
	Side             string // LONG or SHORT
	EntryMarketPrice float64
	Entry2           *float64
	Entry3           *float64
	TakeProfit1      *float64
	TakeProfit2      *float64
	TakeProfit3      *float64
	TakeProfit4      *float64
	TakeProfit5      *float64
	StopLoss         float64
	Leverage         int
	SourceName       string
	ExternalSignalID *string
	ConfidenceScore  float64
	Notes            *string
	RiskRewardRatio  float64
	AutoCreated      bool
	Status           string
	CreatedAt        time.Time
}

// TakeProfits returns the non-nil targets in order.
func (s *Signal) TakeProfits() []float64 {
	out := make([]float64, 0, 5)
	for _, tp := range []*float64{s.TakeProfit1, s.TakeProfit2, s.TakeProfit3, s.TakeProfit4, s.TakeProfit5} {
		if tp != nil {
			out = append(out, *tp)
		}
	}
	return out
}
