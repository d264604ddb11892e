package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/internal/s0_data/quality"
	"github.com/wonny/stockrank/pkg/logger"
)

// Downloader fetches price history in batches and records progress in the download log
// ⭐ SSOT: 가격 수집 오케스트레이션은 이 패키지에서만
type Downloader struct {
	source contracts.PriceSource
	store  Store
	config Config
	pace   *rate.Limiter
	logger *logger.Logger
}

// Options selects which tickers DownloadAll processes
type Options struct {
	Tickers []string // explicit list; empty means every stored ticker
	Resume  bool     // skip tickers already complete
	Limit   int      // 0 means no limit
}

// Stats is the outcome of a download run
type Stats struct {
	Downloaded int `json:"downloaded"`
	Failed     int `json:"failed"`
	Rows       int `json:"rows"`
}

func (s *Stats) add(o Stats) {
	s.Downloaded += o.Downloaded
	s.Failed += o.Failed
	s.Rows += o.Rows
}

// Status summarizes download progress
type Status struct {
	Pending      int   `json:"pending"`
	Complete     int   `json:"complete"`
	Failed       int   `json:"failed"`
	NoData       int   `json:"no_data"`
	TotalTickers int   `json:"total_tickers"`
	TotalRows    int64 `json:"total_rows"`
}

// FetchResult represents the result of one ticker fetch
type FetchResult struct {
	Ticker string
	Rows   int
	Status contracts.DownloadStatus
	Error  error
}

// NewDownloader creates a new Downloader instance
func NewDownloader(source contracts.PriceSource, store Store, cfg Config, log *logger.Logger) *Downloader {
	cfg = cfg.normalized()
	return &Downloader{
		source: source,
		store:  store,
		config: cfg,
		pace:   pacer(cfg.BatchDelay),
		logger: log.WithField("module", "downloader"),
	}
}

// DownloadAll downloads full history for the selected tickers
func (d *Downloader) DownloadAll(ctx context.Context, opts Options) (*Stats, error) {
	tickers, err := d.selectTickers(ctx, opts)
	if err != nil {
		return nil, err
	}

	batches := chunk(tickers, d.config.BatchSize)
	total := &Stats{}

	d.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"batches": len(batches),
		"resume":  opts.Resume,
	}).Info("Starting price download")

	for i, batch := range batches {
		if err := d.pace.Wait(ctx); err != nil {
			return total, err
		}

		d.logger.WithFields(map[string]interface{}{
			"batch":      i + 1,
			"of":         len(batches),
			"size":       len(batch),
			"downloaded": total.Downloaded,
			"rows":       total.Rows,
		}).Info("Downloading batch")

		stats, err := d.runWithRetry(ctx, i+1, batch)
		if err != nil {
			return total, err
		}
		total.add(stats)
	}

	d.logger.WithFields(map[string]interface{}{
		"downloaded": total.Downloaded,
		"failed":     total.Failed,
		"rows":       total.Rows,
	}).Info("Download complete")
	return total, nil
}

// selectTickers resolves the ticker list for DownloadAll
func (d *Downloader) selectTickers(ctx context.Context, opts Options) ([]string, error) {
	var tickers []string
	if len(opts.Tickers) > 0 {
		tickers = append(tickers, opts.Tickers...)
	} else {
		stored, err := d.store.ListTickers(ctx)
		if err != nil {
			return nil, fmt.Errorf("list tickers: %w", err)
		}
		for _, t := range stored {
			tickers = append(tickers, t.Symbol)
		}
	}

	if opts.Resume {
		complete, err := d.store.ListByStatus(ctx, contracts.StatusComplete)
		if err != nil {
			return nil, fmt.Errorf("list complete: %w", err)
		}
		done := make(map[string]bool, len(complete))
		for _, e := range complete {
			done[e.Ticker] = true
		}
		kept := tickers[:0]
		for _, t := range tickers {
			if !done[t] {
				kept = append(kept, t)
			}
		}
		tickers = kept
	}

	if opts.Limit > 0 && len(tickers) > opts.Limit {
		tickers = tickers[:opts.Limit]
	}
	return tickers, nil
}

// runWithRetry retries a batch with exponential backoff.
// When every attempt fails the batch's tickers are logged as failed.
func (d *Downloader) runWithRetry(ctx context.Context, batchNum int, batch []string) (Stats, error) {
	var lastErr error
	for attempt := 0; attempt <= d.config.MaxRetries; attempt++ {
		stats, err := d.DownloadBatch(ctx, batch)
		if err == nil {
			return stats, nil
		}
		if ctx.Err() != nil {
			return Stats{}, ctx.Err()
		}
		lastErr = err

		if attempt < d.config.MaxRetries {
			delay := d.config.RetryBaseDelay * time.Duration(1<<attempt)
			d.logger.WithError(err).WithFields(map[string]interface{}{
				"batch":   batchNum,
				"attempt": attempt + 1,
				"delay":   delay,
			}).Warn("Batch failed, retrying")
			if err := sleepCtx(ctx, delay); err != nil {
				return Stats{}, err
			}
		}
	}

	d.logger.WithError(lastErr).WithField("batch", batchNum).Error("Batch failed after retries")
	stats := Stats{}
	for _, t := range batch {
		if err := d.store.SetStatus(ctx, contracts.DownloadLogEntry{
			Ticker:       t,
			Status:       contracts.StatusFailed,
			ErrorMessage: lastErr.Error(),
		}); err != nil {
			return stats, fmt.Errorf("record failure %s: %w", t, err)
		}
		stats.Failed++
	}
	return stats, nil
}

// DownloadBatch downloads the full history of each ticker.
// Per-ticker failures are recorded in the download log; the returned error
// is reserved for failures that should retry the whole batch.
func (d *Downloader) DownloadBatch(ctx context.Context, tickers []string) (Stats, error) {
	return d.fetchBatch(ctx, tickers, time.Time{}, false)
}

// UpdateBatch fetches bars from start onward.
// Tickers without new bars keep their download log entry unchanged.
func (d *Downloader) UpdateBatch(ctx context.Context, tickers []string, start time.Time) (Stats, error) {
	return d.fetchBatch(ctx, tickers, start, true)
}

// fetchBatch runs a worker pool over tickers
func (d *Downloader) fetchBatch(ctx context.Context, tickers []string, start time.Time, incremental bool) (Stats, error) {
	stats := Stats{}
	if len(tickers) == 0 {
		return stats, nil
	}

	resultCh := make(chan FetchResult, len(tickers))
	tickerCh := make(chan string, len(tickers))
	for _, t := range tickers {
		tickerCh <- t
	}
	close(tickerCh)

	var wg sync.WaitGroup
	workers := min(d.config.Workers, len(tickers))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			d.priceWorker(ctx, workerID, tickerCh, resultCh, start, incremental)
		}(i)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var errs []error
	for r := range resultCh {
		switch {
		case r.Error != nil:
			errs = append(errs, fmt.Errorf("%s: %w", r.Ticker, r.Error))
		case r.Status == contracts.StatusComplete:
			stats.Downloaded++
			stats.Rows += r.Rows
		case r.Status == contracts.StatusFailed, r.Status == contracts.StatusNoData:
			stats.Failed++
		}
	}

	if len(errs) > 0 {
		return stats, errors.Join(errs...)
	}
	return stats, nil
}

// priceWorker processes price fetching for tickers
func (d *Downloader) priceWorker(ctx context.Context, workerID int, tickerCh <-chan string, resultCh chan<- FetchResult, start time.Time, incremental bool) {
	for ticker := range tickerCh {
		if err := ctx.Err(); err != nil {
			resultCh <- FetchResult{Ticker: ticker, Error: err}
			continue
		}

		result := d.fetchOne(ctx, ticker, start, incremental)
		if result.Error != nil {
			d.logger.WithError(result.Error).WithFields(map[string]interface{}{
				"worker": workerID,
				"ticker": ticker,
			}).Error("Failed to record download")
		} else {
			d.logger.WithFields(map[string]interface{}{
				"worker": workerID,
				"ticker": ticker,
				"status": result.Status,
				"rows":   result.Rows,
			}).Debug("Fetched prices")
		}
		resultCh <- result
	}
}

// fetchOne downloads, validates and stores one ticker.
// Only download log write failures are returned as errors.
func (d *Downloader) fetchOne(ctx context.Context, ticker string, start time.Time, incremental bool) FetchResult {
	fail := func(cause error) FetchResult {
		entry := contracts.DownloadLogEntry{
			Ticker:       ticker,
			Status:       contracts.StatusFailed,
			ErrorMessage: cause.Error(),
		}
		if err := d.store.SetStatus(ctx, entry); err != nil {
			return FetchResult{Ticker: ticker, Error: err}
		}
		return FetchResult{Ticker: ticker, Status: contracts.StatusFailed}
	}

	bars, err := d.source.FetchHistory(ctx, ticker, start, time.Time{})
	if err != nil && !errors.Is(err, contracts.ErrNoData) {
		return fail(err)
	}

	bars = quality.NormalizeBars(bars)
	if len(bars) == 0 {
		if incremental {
			return FetchResult{Ticker: ticker}
		}
		if err := d.store.SetStatus(ctx, contracts.DownloadLogEntry{Ticker: ticker, Status: contracts.StatusNoData}); err != nil {
			return FetchResult{Ticker: ticker, Error: err}
		}
		return FetchResult{Ticker: ticker, Status: contracts.StatusNoData}
	}

	if err := quality.ValidateSeries(contracts.Series{Ticker: ticker, Bars: bars}); err != nil {
		return fail(err)
	}

	rows, err := d.store.SaveBars(ctx, ticker, bars)
	if err != nil {
		return fail(err)
	}

	last := bars[len(bars)-1].Date
	if err := d.store.SetStatus(ctx, contracts.DownloadLogEntry{
		Ticker:        ticker,
		Status:        contracts.StatusComplete,
		LastPriceDate: &last,
	}); err != nil {
		return FetchResult{Ticker: ticker, Error: err}
	}
	return FetchResult{Ticker: ticker, Rows: rows, Status: contracts.StatusComplete}
}

// RetryFailed resets failed tickers and downloads them again without resume
func (d *Downloader) RetryFailed(ctx context.Context) (*Stats, error) {
	failed, err := d.store.ResetFailed(ctx)
	if err != nil {
		return nil, fmt.Errorf("reset failed: %w", err)
	}
	if len(failed) == 0 {
		d.logger.Info("No failed tickers to retry")
		return &Stats{}, nil
	}

	d.logger.WithField("count", len(failed)).Info("Retrying failed tickers")
	return d.DownloadAll(ctx, Options{Tickers: failed, Resume: false})
}

// Status returns counts per download status plus ticker and row totals
func (d *Downloader) Status(ctx context.Context) (*Status, error) {
	counts, err := d.store.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	tickers, err := d.store.CountTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count tickers: %w", err)
	}
	rows, err := d.store.CountBars(ctx)
	if err != nil {
		return nil, fmt.Errorf("count bars: %w", err)
	}

	return &Status{
		Pending:      counts[contracts.StatusPending],
		Complete:     counts[contracts.StatusComplete],
		Failed:       counts[contracts.StatusFailed],
		NoData:       counts[contracts.StatusNoData],
		TotalTickers: tickers,
		TotalRows:    rows,
	}, nil
}
