package position

import "time"

const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)

type Position struct {
	ID               int64
	SignalID         *int64
	Symbol           string
	Side             string // LONG or SHORT
	Size             float64
	EntryPrice       float64
	Leverage         int
	MarginUsed       float64
	UnrealizedPnL    float64
	Status           string
	CloseReason      *string
	ClosePrice       *float64
	ClosedAt         *time.Time
	TargetNotifiedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PnLPercent expresses unrealized P&L against the margin backing the
// position; milestone thresholds compare this value.
func (p *Position) PnLPercent(pnl float64) float64 {
	if p.MarginUsed <= 0 {
		return 0
	}
	return pnl / p.MarginUsed * 100
}
