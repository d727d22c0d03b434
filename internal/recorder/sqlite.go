package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the audit trail to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_requests (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id   TEXT NOT NULL,
			timestamp    INTEGER NOT NULL,
			route        TEXT,
			ticker       TEXT,
			start_date   TEXT,
			end_date     TEXT,
			sma_period   INTEGER,
			long_sma     INTEGER,
			ema_period   INTEGER,
			rsi_period   INTEGER,
			source       TEXT,
			status       TEXT,
			bars         INTEGER,
			total_return REAL,
			volatility   REAL,
			latest_rsi   REAL,
			rsi_zone     TEXT,
			error        TEXT,
			duration_ms  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_ts ON analysis_requests(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_ticker ON analysis_requests(ticker)`,

		`CREATE TABLE IF NOT EXISTS watch_alerts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			ticker     TEXT,
			kind       TEXT,
			latest_rsi REAL,
			close      REAL,
			delivered  INTEGER,
			message    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON watch_alerts(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(evt *AnalysisEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if evt.RequestID == "" {
		evt.RequestID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO analysis_requests
		(request_id, timestamp, route, ticker, start_date, end_date,
		 sma_period, long_sma, ema_period, rsi_period, source, status,
		 bars, total_return, volatility, latest_rsi, rsi_zone, error, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		evt.RequestID, evt.Timestamp.Unix(), evt.Route, evt.Ticker, evt.Start, evt.End,
		evt.SMAPeriod, evt.LongSMA, evt.EMAPeriod, evt.RSIPeriod, evt.Source, evt.Status,
		evt.Bars, evt.TotalReturn, evt.Volatility, evt.LatestRSI, evt.RSIZone, evt.Error, evt.DurationMs,
	)
	return err
}

func (r *SQLiteRecorder) RecordAlert(evt *AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO watch_alerts
		(timestamp, ticker, kind, latest_rsi, close, delivered, message)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Ticker, evt.Kind, evt.LatestRSI, evt.Close, evt.Delivered, evt.Message,
	)
	return err
}

// RecentAnalyses returns the newest requests first.
func (r *SQLiteRecorder) RecentAnalyses(limit int) ([]AnalysisEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`SELECT request_id, timestamp, route, ticker, start_date, end_date,
		sma_period, long_sma, ema_period, rsi_period, source, status,
		bars, total_return, volatility, latest_rsi, rsi_zone, error, duration_ms
		FROM analysis_requests ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent analyses: %w", err)
	}
	defer rows.Close()

	var events []AnalysisEvent
	for rows.Next() {
		var e AnalysisEvent
		var ts int64
		if err := rows.Scan(&e.RequestID, &ts, &e.Route, &e.Ticker, &e.Start, &e.End,
			&e.SMAPeriod, &e.LongSMA, &e.EMAPeriod, &e.RSIPeriod, &e.Source, &e.Status,
			&e.Bars, &e.TotalReturn, &e.Volatility, &e.LatestRSI, &e.RSIZone, &e.Error, &e.DurationMs); err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		e.Timestamp = time.Unix(ts, 0)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
