package s0_data

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/stockrank/internal/contracts"
)

// SetStatus upserts a download log entry.
// A failed status increments retry_count; a missing last_price_date keeps the stored one.
func (s *Store) SetStatus(ctx context.Context, entry contracts.DownloadLogEntry) error {
	query := `
		INSERT INTO download_log (ticker, status, last_price_date, retry_count, error_message, updated_at)
		VALUES ($1, $2, $3, CASE WHEN $2 = 'failed' THEN 1 ELSE 0 END, $4, NOW())
		ON CONFLICT (ticker) DO UPDATE SET
			status = EXCLUDED.status,
			last_price_date = COALESCE(EXCLUDED.last_price_date, download_log.last_price_date),
			retry_count = CASE WHEN EXCLUDED.status = 'failed'
				THEN download_log.retry_count + 1 ELSE download_log.retry_count END,
			error_message = EXCLUDED.error_message,
			updated_at = NOW()
	`

	_, err := s.pool.Exec(ctx, query, entry.Ticker, string(entry.Status), entry.LastPriceDate, entry.ErrorMessage)
	if err != nil {
		return fmt.Errorf("set download status %s: %w", entry.Ticker, err)
	}
	return nil
}

// GetEntry returns one ticker's download log entry
func (s *Store) GetEntry(ctx context.Context, ticker string) (*contracts.DownloadLogEntry, error) {
	query := `
		SELECT ticker, status, last_price_date, retry_count, error_message, updated_at
		FROM download_log WHERE ticker = $1
	`

	e, err := scanEntry(s.pool.QueryRow(ctx, query, ticker))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get download entry %s: %w", ticker, err)
	}
	return e, nil
}

// ListByStatus returns entries with the given status ordered by ticker
func (s *Store) ListByStatus(ctx context.Context, status contracts.DownloadStatus) ([]contracts.DownloadLogEntry, error) {
	query := `
		SELECT ticker, status, last_price_date, retry_count, error_message, updated_at
		FROM download_log WHERE status = $1 ORDER BY ticker
	`

	rows, err := s.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("list download log: %w", err)
	}
	defer rows.Close()

	var out []contracts.DownloadLogEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan download entry: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// ResetFailed zeroes retry counts of failed entries and returns their tickers
func (s *Store) ResetFailed(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE download_log SET retry_count = 0, updated_at = NOW()
		WHERE status = 'failed'
		RETURNING ticker
	`)
	if err != nil {
		return nil, fmt.Errorf("reset failed: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Strings(tickers)
	return tickers, nil
}

// CountByStatus returns the number of entries per status
func (s *Store) CountByStatus(ctx context.Context) (map[contracts.DownloadStatus]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM download_log GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count download status: %w", err)
	}
	defer rows.Close()

	out := make(map[contracts.DownloadStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		out[contracts.DownloadStatus(status)] = n
	}
	return out, rows.Err()
}

func scanEntry(row pgx.Row) (*contracts.DownloadLogEntry, error) {
	var e contracts.DownloadLogEntry
	var status string
	if err := row.Scan(&e.Ticker, &status, &e.LastPriceDate, &e.RetryCount, &e.ErrorMessage, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Status = contracts.DownloadStatus(status)
	return &e, nil
}
