package watch

import (
	"log"
	"sync"
	"time"

	"StockDashboard/internal/model"
)

// Alert describes a watchlist transition worth notifying about.
type Alert struct {
	Ticker    string
	Zone      model.RSIZone
	PrevZone  model.RSIZone
	Crossover model.Crossover
	LatestRSI float64
	Close     float64
	Date      time.Time
}

// Kind names the trigger, crossover first.
func (a Alert) Kind() string {
	if a.Crossover != model.CrossNone && a.Crossover != "" {
		return string(a.Crossover)
	}
	return string(a.Zone)
}

// Manager tracks the last signal per watchlist ticker with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *model.WatchState
	filePath string
}

// NewManager creates a Manager, loading or initializing state from disk.
// An empty filePath keeps state in memory only.
func NewManager(filePath string) (*Manager, error) {
	state := &model.WatchState{Entries: map[string]*model.WatchEntry{}}
	if filePath != "" {
		var err error
		if state, err = LoadState(filePath); err != nil {
			return nil, err
		}
	}
	m := &Manager{state: state, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Entry returns a copy of the stored entry for ticker.
func (m *Manager) Entry(ticker string) (model.WatchEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.state.Entries[ticker]
	if !ok {
		return model.WatchEntry{}, false
	}
	return *e, true
}

// AlertsSent returns the number of alerts recorded so far.
func (m *Manager) AlertsSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.AlertsSent
}

// Observe stores the latest analysis of ticker and reports whether it
// should be alerted on. An alert fires when the RSI enters the overbought
// or oversold zone from a different zone, or when the latest bar is a
// moving average crossover. The first observation of a ticker only alerts
// on a crossover, since there is no previous zone to compare against.
func (m *Manager) Observe(a *model.Analysis) (Alert, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticker := a.Request.Ticker
	last := a.Bars[len(a.Bars)-1]
	alert := Alert{
		Ticker:    ticker,
		Zone:      a.Signal.RSIZone,
		PrevZone:  model.ZoneUnknown,
		Crossover: a.Signal.Crossover,
		LatestRSI: a.Signal.LatestRSI,
		Close:     last.Close,
		Date:      last.Date,
	}

	prev, seen := m.state.Entries[ticker]
	if seen {
		alert.PrevZone = prev.Zone
	}

	fire := a.Signal.Crossover != model.CrossNone
	if seen && alert.Zone != prev.Zone &&
		(alert.Zone == model.ZoneOverbought || alert.Zone == model.ZoneOversold) {
		fire = true
	}

	m.state.Entries[ticker] = &model.WatchEntry{
		Ticker:    ticker,
		Zone:      a.Signal.RSIZone,
		Trend:     a.Signal.Trend,
		LatestRSI: a.Signal.LatestRSI,
		Close:     last.Close,
		CheckedAt: time.Now(),
	}
	if fire {
		m.state.AlertsSent++
	}

	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save watch state: %v", err)
	}
	return alert, fire
}

func (m *Manager) save() error {
	if m.filePath == "" {
		return nil
	}
	return SaveState(m.filePath, m.state)
}
