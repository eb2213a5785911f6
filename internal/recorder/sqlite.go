package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists history to a SQLite database.
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
		`CREATE TABLE IF NOT EXISTS quote_ticks (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT,
			bar_time        TEXT,
			open            REAL,
			previous_close  REAL,
			percent_change  REAL,
			action          TEXT,
			bars            INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quote_ts ON quote_ticks(timestamp)`,

		`CREATE TABLE IF NOT EXISTS tick_failures (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT,
			kind      TEXT,
			detail    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failure_ts ON tick_failures(timestamp)`,

		`CREATE TABLE IF NOT EXISTS predictions (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT,
			predicted_price REAL,
			error           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prediction_ts ON predictions(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps non-finite values to NULL; SQLite REAL cannot hold them.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func (r *SQLiteRecorder) RecordQuote(evt *QuoteEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO quote_ticks
		(timestamp, symbol, bar_time, open, previous_close, percent_change, action, bars)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Symbol, evt.BarTime, evt.Open, evt.PreviousClose,
		nullable(evt.PercentChange), evt.Action, evt.Bars,
	)
	return err
}

func (r *SQLiteRecorder) RecordFailure(evt *FailureEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO tick_failures
		(timestamp, symbol, kind, detail)
		VALUES (?,?,?,?)`,
		time.Now().Unix(), evt.Symbol, evt.Kind, evt.Detail,
	)
	return err
}

func (r *SQLiteRecorder) RecordPrediction(evt *PredictionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO predictions
		(timestamp, symbol, predicted_price, error)
		VALUES (?,?,?,?)`,
		time.Now().Unix(), evt.Symbol, evt.PredictedPrice, evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
