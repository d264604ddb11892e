package collector

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/config"
)

// Store is the persistence surface the collectors write to
type Store interface {
	contracts.TickerRepository
	contracts.PriceRepository
	contracts.DownloadLogRepository
}

// Config holds collector configuration
type Config struct {
	BatchSize      int           // Tickers per batch
	Workers        int           // Number of concurrent workers per batch
	MaxRetries     int           // Batch-level retries
	BatchDelay     time.Duration // Minimum spacing between batches
	RetryBaseDelay time.Duration // Backoff base: RetryBaseDelay * 2^attempt
}

// ConfigFrom maps the download section of the app config
func ConfigFrom(cfg config.DownloadConfig) Config {
	return Config{
		BatchSize:      cfg.BatchSize,
		Workers:        cfg.Workers,
		MaxRetries:     cfg.MaxRetries,
		BatchDelay:     cfg.BatchDelay,
		RetryBaseDelay: cfg.RetryBaseDelay,
	}
}

func (c Config) normalized() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return c
}

// pacer returns a limiter that admits one event per interval
func pacer(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// sleepCtx waits for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// chunk splits tickers into batches of size n
func chunk(tickers []string, n int) [][]string {
	batches := make([][]string, 0, (len(tickers)+n-1)/n)
	for i := 0; i < len(tickers); i += n {
		end := min(i+n, len(tickers))
		batches = append(batches, tickers[i:end])
	}
	return batches
}
