package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/stockrank/internal/contracts"
)

// SaveBars upserts bars for one ticker in a single transaction (last write wins)
func (s *Store) SaveBars(ctx context.Context, ticker string, bars []contracts.Bar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_prices (ticker, date, open, high, low, close, volume, adj_close)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume,
			adj_close = excluded.adj_close
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare bar upsert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, ticker, formatDate(b.Date), b.Open, b.High, b.Low, b.Close, b.Volume, b.AdjClose); err != nil {
			return 0, fmt.Errorf("save bars %s: %w", ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit bars %s: %w", ticker, err)
	}
	return len(bars), nil
}

// GetPriceHistory returns bars of one ticker within [from, to].
// Zero bounds are open.
func (s *Store) GetPriceHistory(ctx context.Context, ticker string, from, to time.Time) (contracts.Series, error) {
	var b strings.Builder
	b.WriteString(`SELECT ticker, date, open, high, low, close, volume, adj_close FROM daily_prices WHERE ticker = ?`)
	args := []any{ticker}
	if !from.IsZero() {
		b.WriteString(` AND date >= ?`)
		args = append(args, formatDate(from))
	}
	if !to.IsZero() {
		b.WriteString(` AND date <= ?`)
		args = append(args, formatDate(to))
	}
	b.WriteString(` ORDER BY date ASC`)

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return contracts.Series{}, fmt.Errorf("get price history %s: %w", ticker, err)
	}
	defer rows.Close()

	grouped, err := scanGrouped(rows)
	if err != nil {
		return contracts.Series{}, err
	}
	if len(grouped) == 0 {
		return contracts.Series{Ticker: ticker}, nil
	}
	return grouped[0], nil
}

// GetRecentPrices returns every ticker's bars on or after since in one query
func (s *Store) GetRecentPrices(ctx context.Context, since time.Time) ([]contracts.Series, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticker, date, open, high, low, close, volume, adj_close
		FROM daily_prices
		WHERE date >= ?
		ORDER BY ticker, date
	`, formatDate(since))
	if err != nil {
		return nil, fmt.Errorf("get recent prices: %w", err)
	}
	defer rows.Close()

	return scanGrouped(rows)
}

// LastPriceDates returns the latest stored date per ticker
func (s *Store) LastPriceDates(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ticker, MAX(date) FROM daily_prices GROUP BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("last price dates: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var ticker, last string
		if err := rows.Scan(&ticker, &last); err != nil {
			return nil, fmt.Errorf("scan last date: %w", err)
		}
		d, err := parseDate(last)
		if err != nil {
			return nil, err
		}
		out[ticker] = d
	}
	return out, rows.Err()
}

// CountBars returns the number of stored bars
func (s *Store) CountBars(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM daily_prices`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bars: %w", err)
	}
	return n, nil
}

// scanGrouped groups rows ordered by ticker, date into series
func scanGrouped(rows *sql.Rows) ([]contracts.Series, error) {
	var out []contracts.Series
	for rows.Next() {
		var ticker, date string
		var open, high, low, adj sql.NullFloat64
		var volume sql.NullInt64
		var b contracts.Bar
		if err := rows.Scan(&ticker, &date, &open, &high, &low, &b.Close, &volume, &adj); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}

		d, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		b.Date = d
		b.Open = orClose(open, b.Close)
		b.High = orClose(high, b.Close)
		b.Low = orClose(low, b.Close)
		b.AdjClose = orClose(adj, b.Close)
		b.Volume = volume.Int64

		if n := len(out); n == 0 || out[n-1].Ticker != ticker {
			out = append(out, contracts.Series{Ticker: ticker})
		}
		out[len(out)-1].Bars = append(out[len(out)-1].Bars, b)
	}
	return out, rows.Err()
}

func orClose(v sql.NullFloat64, close float64) float64 {
	if !v.Valid {
		return close
	}
	return v.Float64
}
