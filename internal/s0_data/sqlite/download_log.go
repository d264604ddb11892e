package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/stockrank/internal/contracts"
)

// SetStatus upserts a download log entry.
// A failed status increments retry_count; a missing last_price_date keeps the stored one.
func (s *Store) SetStatus(ctx context.Context, entry contracts.DownloadLogEntry) error {
	var lastDate sql.NullString
	if entry.LastPriceDate != nil {
		lastDate = sql.NullString{String: formatDate(*entry.LastPriceDate), Valid: true}
	}

	initialRetries := 0
	if entry.Status == contracts.StatusFailed {
		initialRetries = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO download_log (ticker, status, last_price_date, retry_count, error_message, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			status = excluded.status,
			last_price_date = COALESCE(excluded.last_price_date, download_log.last_price_date),
			retry_count = CASE WHEN excluded.status = 'failed'
				THEN download_log.retry_count + 1 ELSE download_log.retry_count END,
			error_message = excluded.error_message,
			updated_at = excluded.updated_at
	`, entry.Ticker, string(entry.Status), lastDate, initialRetries, entry.ErrorMessage, now())
	if err != nil {
		return fmt.Errorf("set download status %s: %w", entry.Ticker, err)
	}
	return nil
}

// GetEntry returns one ticker's download log entry
func (s *Store) GetEntry(ctx context.Context, ticker string) (*contracts.DownloadLogEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT ticker, status, last_price_date, retry_count, error_message, updated_at
		FROM download_log WHERE ticker = ?
	`, ticker)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get download entry %s: %w", ticker, err)
	}
	return e, nil
}

// ListByStatus returns entries with the given status ordered by ticker
func (s *Store) ListByStatus(ctx context.Context, status contracts.DownloadStatus) ([]contracts.DownloadLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticker, status, last_price_date, retry_count, error_message, updated_at
		FROM download_log WHERE status = ? ORDER BY ticker
	`, string(status))
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
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT ticker FROM download_log WHERE status = 'failed' ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("list failed: %w", err)
	}
	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `UPDATE download_log SET retry_count = 0, updated_at = ? WHERE status = 'failed'`, now()); err != nil {
		return nil, fmt.Errorf("reset failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reset: %w", err)
	}
	return tickers, nil
}

// CountByStatus returns the number of entries per status
func (s *Store) CountByStatus(ctx context.Context) (map[contracts.DownloadStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM download_log GROUP BY status`)
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

func scanEntry(row scanner) (*contracts.DownloadLogEntry, error) {
	var e contracts.DownloadLogEntry
	var status, updated string
	var lastDate sql.NullString
	if err := row.Scan(&e.Ticker, &status, &lastDate, &e.RetryCount, &e.ErrorMessage, &updated); err != nil {
		return nil, err
	}
	e.Status = contracts.DownloadStatus(status)

	if lastDate.Valid {
		d, err := parseDate(lastDate.String)
		if err != nil {
			return nil, err
		}
		e.LastPriceDate = &d
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		e.UpdatedAt = t
	}
	return &e, nil
}
