package model

import "time"

// WatchEntry is the last observed state of one watchlist ticker.
type WatchEntry struct {
	Ticker    string    `json:"ticker"`
	Zone      RSIZone   `json:"zone"`
	Trend     Trend     `json:"trend"`
	LatestRSI float64   `json:"latest_rsi"`
	Close     float64   `json:"close"`
	CheckedAt time.Time `json:"checked_at"`
}

// WatchState is the persisted state of the watchlist job.
type WatchState struct {
	Entries    map[string]*WatchEntry `json:"entries"`
	AlertsSent int                    `json:"alerts_sent"`
	UpdatedAt  time.Time              `json:"updated_at"`
}
