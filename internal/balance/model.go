package balance

import "time"

// Snapshot is the single "current" account balance row, updated in place.
type Snapshot struct {
	ID               int64
	Asset            string
	TotalBalance     float64
	AvailableMargin  float64
	UsedMargin       float64
	UnrealizedProfit float64
	UpdatedAt        time.Time
}
