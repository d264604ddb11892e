package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/internal/s0_data/sqlite"
	"github.com/wonny/stockrank/pkg/database"
	"github.com/wonny/stockrank/pkg/logger"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func bars(from, n int) []contracts.Bar {
	out := make([]contracts.Bar, n)
	for i := range out {
		c := 100 + float64(i)
		out[i] = contracts.Bar{Date: day(from + i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000, AdjClose: c}
	}
	return out
}

// fakePrices serves canned bars, filtering by start
type fakePrices struct {
	mu     sync.Mutex
	bars   map[string][]contracts.Bar
	errs   map[string]error
	calls  map[string]int
	starts map[string]time.Time
}

func newFakePrices() *fakePrices {
	return &fakePrices{
		bars:   map[string][]contracts.Bar{},
		errs:   map[string]error{},
		calls:  map[string]int{},
		starts: map[string]time.Time{},
	}
}

func (f *fakePrices) FetchHistory(ctx context.Context, ticker string, start, end time.Time) ([]contracts.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ticker]++
	f.starts[ticker] = start
	if err := f.errs[ticker]; err != nil {
		return nil, err
	}
	var out []contracts.Bar
	for _, b := range f.bars[ticker] {
		if start.IsZero() || !b.Date.Before(start) {
			out = append(out, b)
		}
	}
	return out, nil
}

func newStore(t *testing.T, tickers ...string) *sqlite.Store {
	t.Helper()
	db, err := database.OpenSQLite(database.MemoryDSN)
	require.NoError(t, err)
	s := sqlite.New(db)
	t.Cleanup(s.Close)
	require.NoError(t, s.InitSchema(context.Background()))

	list := make([]contracts.Ticker, len(tickers))
	for i, tk := range tickers {
		list[i] = contracts.Ticker{Symbol: tk, Name: tk + " Inc."}
	}
	_, err = s.UpsertTickers(context.Background(), list)
	require.NoError(t, err)
	return s
}

func testConfig() Config {
	return Config{BatchSize: 2, Workers: 2, MaxRetries: 1, RetryBaseDelay: time.Millisecond}
}

func TestDownloader_DownloadAll(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "AAPL", "MSFT", "NODATA", "BROKEN")

	src := newFakePrices()
	src.bars["AAPL"] = bars(0, 5)
	src.bars["MSFT"] = bars(0, 3)
	src.errs["BROKEN"] = errors.New("http 500")

	d := NewDownloader(src, store, testConfig(), logger.Nop())
	stats, err := d.DownloadAll(ctx, Options{Resume: true})
	require.NoError(t, err)

	assert.Equal(t, Stats{Downloaded: 2, Failed: 2, Rows: 8}, *stats)

	aapl, err := store.GetEntry(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusComplete, aapl.Status)
	require.NotNil(t, aapl.LastPriceDate)
	assert.True(t, aapl.LastPriceDate.Equal(day(4)))

	nodata, err := store.GetEntry(ctx, "NODATA")
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusNoData, nodata.Status)

	broken, err := store.GetEntry(ctx, "BROKEN")
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusFailed, broken.Status)
	assert.Equal(t, 1, broken.RetryCount)
	assert.Contains(t, broken.ErrorMessage, "http 500")

	// resume skips complete tickers
	stats, err = d.DownloadAll(ctx, Options{Resume: true})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Downloaded)
	assert.Equal(t, 1, src.calls["AAPL"])
	assert.Equal(t, 2, src.calls["BROKEN"])
}

func TestDownloader_DownloadAllLimitAndExplicit(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "AAPL", "IBM", "MSFT")

	src := newFakePrices()
	src.bars["AAPL"] = bars(0, 2)
	src.bars["IBM"] = bars(0, 2)
	src.bars["MSFT"] = bars(0, 2)

	d := NewDownloader(src, store, testConfig(), logger.Nop())
	stats, err := d.DownloadAll(ctx, Options{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Downloaded)
	assert.Zero(t, src.calls["MSFT"])

	stats, err = d.DownloadAll(ctx, Options{Tickers: []string{"MSFT"}})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Downloaded)
	assert.Equal(t, 1, src.calls["MSFT"])
}

func TestDownloader_InvalidSeriesIsFailed(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "BAD")

	src := newFakePrices()
	src.bars["BAD"] = []contracts.Bar{{Date: day(0), Close: -1, High: 1, Low: 0}}

	d := NewDownloader(src, store, testConfig(), logger.Nop())
	stats, err := d.DownloadBatch(ctx, []string{"BAD"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)

	n, err := store.CountBars(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDownloader_RetryFailedAndStatus(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "AAPL", "FLAKY")

	src := newFakePrices()
	src.bars["AAPL"] = bars(0, 2)
	src.bars["FLAKY"] = bars(0, 4)
	src.errs["FLAKY"] = errors.New("timeout")

	d := NewDownloader(src, store, testConfig(), logger.Nop())
	_, err := d.DownloadAll(ctx, Options{})
	require.NoError(t, err)

	status, err := d.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, Status{Complete: 1, Failed: 1, TotalTickers: 2, TotalRows: 2}, *status)

	delete(src.errs, "FLAKY")
	stats, err := d.RetryFailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Downloaded: 1, Rows: 4}, *stats)

	status, err = d.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.Complete)
	assert.Equal(t, int64(6), status.TotalRows)

	stats, err = d.RetryFailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, *stats)
}

// failingLog makes every download log write fail to exercise batch retries
type failingLog struct {
	*sqlite.Store
	writes int
}

func (f *failingLog) SetStatus(ctx context.Context, entry contracts.DownloadLogEntry) error {
	f.writes++
	if entry.Status == contracts.StatusFailed {
		return f.Store.SetStatus(ctx, entry)
	}
	return errors.New("disk full")
}

func TestDownloader_BatchRetryThenFail(t *testing.T) {
	ctx := context.Background()
	store := &failingLog{Store: newStore(t, "AAPL")}

	src := newFakePrices()
	src.bars["AAPL"] = bars(0, 2)

	d := NewDownloader(src, store, testConfig(), logger.Nop())
	stats, err := d.DownloadAll(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, Stats{Failed: 1}, *stats)
	assert.Equal(t, 2, src.calls["AAPL"])

	e, err := store.GetEntry(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusFailed, e.Status)
	assert.Contains(t, e.ErrorMessage, "disk full")
}

func TestDownloader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newStore(t, "AAPL")
	d := NewDownloader(newFakePrices(), store, testConfig(), logger.Nop())
	_, err := d.DownloadAll(ctx, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChunk(t *testing.T) {
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, chunk([]string{"a", "b", "c"}, 2))
	assert.Empty(t, chunk(nil, 2))
}
