package s0_data

import (
	"context"
	"fmt"

	"github.com/wonny/stockrank/internal/contracts"
)

// UpsertTickers inserts new tickers and refreshes name/exchange of known ones
func (s *Store) UpsertTickers(ctx context.Context, tickers []contracts.Ticker) (*contracts.SyncResult, error) {
	result := &contracts.SyncResult{Total: len(tickers)}
	if len(tickers) == 0 {
		return result, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// xmax = 0 only for freshly inserted rows
	query := `
		INSERT INTO tickers (ticker, name, exchange)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker) DO UPDATE SET
			name = EXCLUDED.name,
			exchange = EXCLUDED.exchange,
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`

	for _, t := range tickers {
		var inserted bool
		if err := tx.QueryRow(ctx, query, t.Symbol, t.Name, t.Exchange).Scan(&inserted); err != nil {
			return nil, fmt.Errorf("upsert ticker %s: %w", t.Symbol, err)
		}
		if inserted {
			result.New++
		} else {
			result.Updated++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit tickers: %w", err)
	}
	return result, nil
}

// ListTickers returns every stored ticker ordered by symbol
func (s *Store) ListTickers(ctx context.Context) ([]contracts.Ticker, error) {
	rows, err := s.pool.Query(ctx, `SELECT ticker, name, exchange FROM tickers ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	defer rows.Close()

	var tickers []contracts.Ticker
	for rows.Next() {
		var t contracts.Ticker
		if err := rows.Scan(&t.Symbol, &t.Name, &t.Exchange); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// CountTickers returns the number of stored tickers
func (s *Store) CountTickers(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tickers: %w", err)
	}
	return n, nil
}
