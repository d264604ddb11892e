package contracts

import (
	"context"
	"errors"
	"time"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

var (
	// ErrNotFound is returned when a requested row does not exist
	ErrNotFound = errors.New("not found")
	// ErrNoData is returned when a source has no data for a ticker
	ErrNoData = errors.New("no data")
)

// TickerRepository manages the ticker universe
type TickerRepository interface {
	UpsertTickers(ctx context.Context, tickers []Ticker) (*SyncResult, error)
	ListTickers(ctx context.Context) ([]Ticker, error)
	CountTickers(ctx context.Context) (int, error)
}

// PriceRepository manages daily price bars
type PriceRepository interface {
	SaveBars(ctx context.Context, ticker string, bars []Bar) (int, error)
	GetPriceHistory(ctx context.Context, ticker string, from, to time.Time) (Series, error)
	// GetRecentPrices returns all bars on or after since, grouped by ticker
	// in ascending ticker order with ascending dates
	GetRecentPrices(ctx context.Context, since time.Time) ([]Series, error)
	LastPriceDates(ctx context.Context) (map[string]time.Time, error)
	CountBars(ctx context.Context) (int64, error)
}

// FundamentalsRepository manages the fundamentals snapshot table
type FundamentalsRepository interface {
	SaveFundamentals(ctx context.Context, f *Fundamentals) error
	GetFundamentals(ctx context.Context, ticker string) (*Fundamentals, error)
	GetAllFundamentals(ctx context.Context) ([]Fundamentals, error)
}

// DownloadLogRepository tracks per-ticker download progress
type DownloadLogRepository interface {
	SetStatus(ctx context.Context, entry DownloadLogEntry) error
	GetEntry(ctx context.Context, ticker string) (*DownloadLogEntry, error)
	ListByStatus(ctx context.Context, status DownloadStatus) ([]DownloadLogEntry, error)
	// ResetFailed resets retry counts of failed entries and returns their tickers
	ResetFailed(ctx context.Context) ([]string, error)
	CountByStatus(ctx context.Context) (map[DownloadStatus]int, error)
}

// Store bundles every repository a backend provides
type Store interface {
	TickerRepository
	PriceRepository
	FundamentalsRepository
	DownloadLogRepository

	InitSchema(ctx context.Context) error
	Close()
}

// SyncResult is the outcome of a ticker upsert
type SyncResult struct {
	Total   int `json:"total"`
	New     int `json:"new"`
	Updated int `json:"updated"`
}

// DownloadStatus is the state of a ticker in the download log
type DownloadStatus string

const (
	StatusPending  DownloadStatus = "pending"
	StatusComplete DownloadStatus = "complete"
	StatusFailed   DownloadStatus = "failed"
	StatusNoData   DownloadStatus = "no_data"
)

// Valid checks if the status is a known value
func (s DownloadStatus) Valid() bool {
	switch s {
	case StatusPending, StatusComplete, StatusFailed, StatusNoData:
		return true
	}
	return false
}

// DownloadLogEntry is one row of the download log
type DownloadLogEntry struct {
	Ticker        string         `json:"ticker"`
	Status        DownloadStatus `json:"status"`
	LastPriceDate *time.Time     `json:"last_price_date,omitempty"`
	RetryCount    int            `json:"retry_count"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
