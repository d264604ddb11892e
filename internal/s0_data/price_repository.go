package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/stockrank/internal/contracts"
)

// SaveBars upserts bars for one ticker (last write wins)
func (s *Store) SaveBars(ctx context.Context, ticker string, bars []contracts.Bar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO daily_prices (ticker, date, open, high, low, close, volume, adj_close)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticker, date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume,
			adj_close = EXCLUDED.adj_close`

	for _, b := range bars {
		batch.Queue(query, ticker, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume, b.AdjClose)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range bars {
		if _, err := br.Exec(); err != nil {
			return 0, fmt.Errorf("save bars %s: %w", ticker, err)
		}
	}

	return len(bars), nil
}

// GetPriceHistory returns bars of one ticker within [from, to].
// Zero bounds are open.
func (s *Store) GetPriceHistory(ctx context.Context, ticker string, from, to time.Time) (contracts.Series, error) {
	query := `
		SELECT date, open, high, low, close, volume, adj_close
		FROM daily_prices
		WHERE ticker = $1
		  AND ($2::date IS NULL OR date >= $2)
		  AND ($3::date IS NULL OR date <= $3)
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker, nullDate(from), nullDate(to))
	if err != nil {
		return contracts.Series{}, fmt.Errorf("get price history %s: %w", ticker, err)
	}
	defer rows.Close()

	series := contracts.Series{Ticker: ticker}
	for rows.Next() {
		b, err := scanBar(rows)
		if err != nil {
			return contracts.Series{}, err
		}
		series.Bars = append(series.Bars, b)
	}
	return series, rows.Err()
}

// GetRecentPrices returns every ticker's bars on or after since in one query
func (s *Store) GetRecentPrices(ctx context.Context, since time.Time) ([]contracts.Series, error) {
	query := `
		SELECT ticker, date, open, high, low, close, volume, adj_close
		FROM daily_prices
		WHERE date >= $1
		ORDER BY ticker, date
	`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("get recent prices: %w", err)
	}
	defer rows.Close()

	var out []contracts.Series
	for rows.Next() {
		var ticker string
		var b contracts.Bar
		var open, high, low, adj *float64
		var volume *int64
		if err := rows.Scan(&ticker, &b.Date, &open, &high, &low, &b.Close, &volume, &adj); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		fillBar(&b, open, high, low, volume, adj)

		if n := len(out); n == 0 || out[n-1].Ticker != ticker {
			out = append(out, contracts.Series{Ticker: ticker})
		}
		out[len(out)-1].Bars = append(out[len(out)-1].Bars, b)
	}
	return out, rows.Err()
}

// LastPriceDates returns the latest stored date per ticker
func (s *Store) LastPriceDates(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.pool.Query(ctx, `SELECT ticker, MAX(date) FROM daily_prices GROUP BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("last price dates: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var ticker string
		var last time.Time
		if err := rows.Scan(&ticker, &last); err != nil {
			return nil, fmt.Errorf("scan last date: %w", err)
		}
		out[ticker] = last
	}
	return out, rows.Err()
}

// CountBars returns the number of stored bars
func (s *Store) CountBars(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM daily_prices`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bars: %w", err)
	}
	return n, nil
}

func scanBar(rows pgx.Rows) (contracts.Bar, error) {
	var b contracts.Bar
	var open, high, low, adj *float64
	var volume *int64
	if err := rows.Scan(&b.Date, &open, &high, &low, &b.Close, &volume, &adj); err != nil {
		return b, fmt.Errorf("scan price: %w", err)
	}
	fillBar(&b, open, high, low, volume, adj)
	return b, nil
}

// fillBar copies nullable columns, falling back to close
func fillBar(b *contracts.Bar, open, high, low *float64, volume *int64, adj *float64) {
	b.Open, b.High, b.Low, b.AdjClose = b.Close, b.Close, b.Close, b.Close
	if open != nil {
		b.Open = *open
	}
	if high != nil {
		b.High = *high
	}
	if low != nil {
		b.Low = *low
	}
	if adj != nil {
		b.AdjClose = *adj
	}
	if volume != nil {
		b.Volume = *volume
	}
}

func nullDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
