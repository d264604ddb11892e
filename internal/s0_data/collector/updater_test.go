package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/logger"
)

type fakeSyncer struct {
	store Store
	add   []contracts.Ticker
}

func (f *fakeSyncer) Sync(ctx context.Context) (*contracts.SyncResult, error) {
	return f.store.UpsertTickers(ctx, f.add)
}

func TestUpdater_Run(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "AAPL", "MSFT")

	src := newFakePrices()
	src.bars["AAPL"] = bars(0, 10)
	src.bars["MSFT"] = bars(0, 10)
	src.bars["NEW"] = bars(0, 3)

	// AAPL has 5 bars stored, MSFT 8
	_, err := store.SaveBars(ctx, "AAPL", bars(0, 5))
	require.NoError(t, err)
	_, err = store.SaveBars(ctx, "MSFT", bars(0, 8))
	require.NoError(t, err)

	d := NewDownloader(src, store, testConfig(), logger.Nop())
	syncer := &fakeSyncer{store: store, add: []contracts.Ticker{{Symbol: "AAPL"}, {Symbol: "MSFT"}, {Symbol: "NEW"}}}
	u := NewUpdater(syncer, store, d, nil, logger.Nop())
	u.now = func() time.Time { return day(30) }

	summary, err := u.Run(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TickersSynced)
	assert.Equal(t, 3, summary.PricesUpdated)
	assert.Equal(t, 3+5+2, summary.NewRows)
	assert.Nil(t, summary.Fundamentals)

	assert.True(t, src.starts["NEW"].IsZero())
	assert.True(t, src.starts["AAPL"].Equal(day(5)))
	assert.True(t, src.starts["MSFT"].Equal(day(8)))

	total, err := store.CountBars(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(23), total)
}

func TestUpdater_NoNewBarsKeepsLog(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "AAPL")

	src := newFakePrices()
	src.bars["AAPL"] = bars(0, 3)

	d := NewDownloader(src, store, testConfig(), logger.Nop())
	_, err := d.DownloadAll(ctx, Options{})
	require.NoError(t, err)

	u := NewUpdater(&fakeSyncer{store: store}, store, d, nil, logger.Nop())
	u.now = func() time.Time { return day(30) }

	summary, err := u.Run(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, summary.PricesUpdated)

	e, err := store.GetEntry(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusComplete, e.Status)
}

func TestUpdater_SkipsFutureStart(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "AAPL")
	_, err := store.SaveBars(ctx, "AAPL", bars(0, 3))
	require.NoError(t, err)

	src := newFakePrices()
	d := NewDownloader(src, store, testConfig(), logger.Nop())
	u := NewUpdater(&fakeSyncer{store: store}, store, d, nil, logger.Nop())
	u.now = func() time.Time { return day(2) }

	_, err = u.Run(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, src.calls["AAPL"])
}

func TestGroupByStart(t *testing.T) {
	tickers := []contracts.Ticker{{Symbol: "A"}, {Symbol: "B"}, {Symbol: "C"}, {Symbol: "D"}}
	last := map[string]time.Time{"A": day(5), "B": day(3), "C": day(5)}

	fresh, groups := groupByStart(tickers, last)
	assert.Equal(t, []string{"D"}, fresh)
	require.Len(t, groups, 2)
	assert.True(t, groups[0].start.Equal(day(4)))
	assert.Equal(t, []string{"B"}, groups[0].tickers)
	assert.Equal(t, []string{"A", "C"}, groups[1].tickers)
}
