package s0_data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/database"
)

var _ contracts.Store = (*Store)(nil)

// Store is the Postgres implementation of every S0 repository
// ⭐ SSOT: Postgres 저장소는 여기서만
type Store struct {
	db   *database.DB
	pool *pgxpool.Pool
}

// NewStore creates a new Postgres store
func NewStore(db *database.DB) *Store {
	return &Store{db: db, pool: db.Pool}
}

// Pool returns the underlying database pool
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the pool
func (s *Store) Close() {
	s.db.Close()
}

// Health reports pool health
func (s *Store) Health(ctx context.Context) (*database.HealthStatus, error) {
	return s.db.HealthCheck(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tickers (
		ticker     TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		exchange   TEXT NOT NULL DEFAULT '',
		added_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS daily_prices (
		ticker    TEXT NOT NULL,
		date      DATE NOT NULL,
		open      DOUBLE PRECISION,
		high      DOUBLE PRECISION,
		low       DOUBLE PRECISION,
		close     DOUBLE PRECISION NOT NULL,
		volume    BIGINT,
		adj_close DOUBLE PRECISION,
		PRIMARY KEY (ticker, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_prices_date ON daily_prices(date)`,
	`CREATE TABLE IF NOT EXISTS fundamentals (
		ticker         TEXT PRIMARY KEY,
		name           TEXT NOT NULL DEFAULT '',
		sector         TEXT NOT NULL DEFAULT '',
		industry       TEXT NOT NULL DEFAULT '',
		market_cap     DOUBLE PRECISION,
		trailing_pe    DOUBLE PRECISION,
		forward_pe     DOUBLE PRECISION,
		dividend_yield DOUBLE PRECISION,
		beta           DOUBLE PRECISION,
		target_mean    DOUBLE PRECISION,
		target_median  DOUBLE PRECISION,
		target_high    DOUBLE PRECISION,
		target_low     DOUBLE PRECISION,
		num_analysts   DOUBLE PRECISION,
		last_updated   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS download_log (
		ticker          TEXT PRIMARY KEY,
		status          TEXT NOT NULL DEFAULT 'pending',
		last_price_date DATE,
		retry_count     INTEGER NOT NULL DEFAULT 0,
		error_message   TEXT NOT NULL DEFAULT '',
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// InitSchema creates all tables if they do not exist
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
