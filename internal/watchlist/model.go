package watchlist

import "time"

// Item statuses; "triggered" is terminal, set by the price monitor.
const (
	StatusActive    = "active"
	StatusTriggered = "triggered"
	StatusCancelled = "cancelled"
)

type Item struct {
	ID           int64
	Symbol       string
	EntryPrice   float64
	EntryType    string // market, entry_2, entry_3
	Direction    string // long or short
	MarginAmount float64
	Percentage   *float64
	InitialPrice *float64
	Status       string
	TriggeredAt  *time.Time
	CreatedAt    time.Time
}
