package sqlite

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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing := make(map[string]bool)
	rows, err := tx.QueryContext(ctx, `SELECT ticker FROM tickers`)
	if err != nil {
		return nil, fmt.Errorf("load existing tickers: %w", err)
	}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		existing[t] = true
	}
	rows.Close()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tickers (ticker, name, exchange, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			name = excluded.name,
			exchange = excluded.exchange,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare ticker upsert: %w", err)
	}
	defer stmt.Close()

	ts := now()
	for _, t := range tickers {
		if _, err := stmt.ExecContext(ctx, t.Symbol, t.Name, t.Exchange, ts, ts); err != nil {
			return nil, fmt.Errorf("upsert ticker %s: %w", t.Symbol, err)
		}
		if existing[t.Symbol] {
			result.Updated++
		} else {
			result.New++
			existing[t.Symbol] = true
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tickers: %w", err)
	}
	return result, nil
}

// ListTickers returns every stored ticker ordered by symbol
func (s *Store) ListTickers(ctx context.Context) ([]contracts.Ticker, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ticker, name, exchange FROM tickers ORDER BY ticker`)
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
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tickers: %w", err)
	}
	return n, nil
}
