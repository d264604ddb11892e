package collector

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/logger"
	"github.com/wonny/stockrank/pkg/redis"
)

// FundamentalsSummary is the outcome of a fundamentals refresh
type FundamentalsSummary struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Failed    int `json:"failed"`
	Cached    int `json:"cached"`
}

// FundamentalsFetcher refreshes the fundamentals table one ticker at a time
type FundamentalsFetcher struct {
	source  contracts.FundamentalsSource
	tickers contracts.TickerRepository
	repo    contracts.FundamentalsRepository
	cache   *redis.Cache
	ttl     time.Duration
	pace    *rate.Limiter
	logger  *logger.Logger
}

// NewFundamentalsFetcher creates a fetcher paced at one request per delay.
// cache may be nil.
func NewFundamentalsFetcher(
	source contracts.FundamentalsSource,
	tickers contracts.TickerRepository,
	repo contracts.FundamentalsRepository,
	cache *redis.Cache,
	ttl, delay time.Duration,
	log *logger.Logger,
) *FundamentalsFetcher {
	return &FundamentalsFetcher{
		source:  source,
		tickers: tickers,
		repo:    repo,
		cache:   cache,
		ttl:     ttl,
		pace:    pacer(delay),
		logger:  log.WithField("module", "fundamentals"),
	}
}

// FetchAll refreshes fundamentals of every stored ticker (first limit when limit > 0).
// Per-ticker failures are counted, not returned.
func (f *FundamentalsFetcher) FetchAll(ctx context.Context, limit int) (*FundamentalsSummary, error) {
	stored, err := f.tickers.ListTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	if limit > 0 && len(stored) > limit {
		stored = stored[:limit]
	}

	summary := &FundamentalsSummary{}
	for i, t := range stored {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		data, cached, err := f.fetch(ctx, t.Symbol)
		summary.Processed++
		if err != nil {
			f.logger.WithError(err).WithField("ticker", t.Symbol).Warn("Failed to fetch fundamentals")
			summary.Failed++
			continue
		}
		if cached {
			summary.Cached++
		}

		if data.Name == "" {
			data.Name = t.Name
		}
		if err := f.repo.SaveFundamentals(ctx, data); err != nil {
			f.logger.WithError(err).WithField("ticker", t.Symbol).Error("Failed to save fundamentals")
			summary.Failed++
			continue
		}
		summary.Updated++

		if (i+1)%100 == 0 {
			f.logger.Infof("Progress: %d / %d tickers processed", i+1, len(stored))
		}
	}

	f.logger.WithFields(map[string]interface{}{
		"processed": summary.Processed,
		"updated":   summary.Updated,
		"failed":    summary.Failed,
		"cached":    summary.Cached,
	}).Info("Fundamentals refresh complete")
	return summary, nil
}

// fetch reads through the cache, pacing only real requests
func (f *FundamentalsFetcher) fetch(ctx context.Context, ticker string) (*contracts.Fundamentals, bool, error) {
	key := redis.FundamentalsKey(ticker)
	if f.cache != nil {
		var hit contracts.Fundamentals
		found, err := f.cache.Get(ctx, key, &hit)
		if err != nil {
			f.logger.WithError(err).WithField("ticker", ticker).Debug("Fundamentals cache read failed")
		}
		if found {
			return &hit, true, nil
		}
	}

	if err := f.pace.Wait(ctx); err != nil {
		return nil, false, err
	}
	data, err := f.source.FetchFundamentals(ctx, ticker)
	if err != nil {
		return nil, false, err
	}

	if f.cache != nil {
		if err := f.cache.Set(ctx, key, data, f.ttl); err != nil {
			f.logger.WithError(err).WithField("ticker", ticker).Debug("Fundamentals cache write failed")
		}
	}
	return data, false, nil
}
