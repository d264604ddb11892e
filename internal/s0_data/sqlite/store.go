// Package sqlite is the single-file SQLite implementation of the S0 repositories.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/database"
)

// dateLayout is how trading dates are stored
const dateLayout = "2006-01-02"

var _ contracts.Store = (*Store)(nil)

// Store implements every S0 repository on a SQLite handle
// ⭐ SSOT: SQLite 저장소는 여기서만
type Store struct {
	db *sql.DB
}

// New wraps an open handle
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens the database at path via database.OpenSQLite
func Open(path string) (*Store, error) {
	db, err := database.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// DB returns the underlying handle
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the handle
func (s *Store) Close() {
	_ = s.db.Close()
}

// Health reports handle health
func (s *Store) Health(ctx context.Context) (*database.HealthStatus, error) {
	return database.SQLiteHealthCheck(ctx, s.db)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tickers (
		ticker     TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		exchange   TEXT NOT NULL DEFAULT '',
		added_at   TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_prices (
		ticker    TEXT NOT NULL,
		date      TEXT NOT NULL,
		open      REAL,
		high      REAL,
		low       REAL,
		close     REAL NOT NULL,
		volume    INTEGER,
		adj_close REAL,
		PRIMARY KEY (ticker, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_prices_date ON daily_prices(date)`,
	`CREATE TABLE IF NOT EXISTS fundamentals (
		ticker         TEXT PRIMARY KEY,
		name           TEXT NOT NULL DEFAULT '',
		sector         TEXT NOT NULL DEFAULT '',
		industry       TEXT NOT NULL DEFAULT '',
		market_cap     REAL,
		trailing_pe    REAL,
		forward_pe     REAL,
		dividend_yield REAL,
		beta           REAL,
		target_mean    REAL,
		target_median  REAL,
		target_high    REAL,
		target_low     REAL,
		num_analysts   REAL,
		last_updated   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS download_log (
		ticker          TEXT PRIMARY KEY,
		status          TEXT NOT NULL DEFAULT 'pending',
		last_price_date TEXT,
		retry_count     INTEGER NOT NULL DEFAULT 0,
		error_message   TEXT NOT NULL DEFAULT '',
		updated_at      TEXT NOT NULL
	)`,
}

// InitSchema creates all tables if they do not exist
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func nullFloat(n contracts.Num) sql.NullFloat64 {
	return sql.NullFloat64{Float64: n.Value, Valid: n.Valid}
}

func numFromNull(v sql.NullFloat64) contracts.Num {
	if !v.Valid {
		return contracts.None()
	}
	return contracts.NumFromFloat(v.Float64)
}
