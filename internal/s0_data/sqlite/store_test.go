package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.OpenSQLite(database.MemoryDSN)
	require.NoError(t, err)
	s := New(db)
	t.Cleanup(s.Close)
	require.NoError(t, s.InitSchema(context.Background()))
	return s
}

func day(s string) time.Time {
	d, _ := time.Parse(dateLayout, s)
	return d
}

func TestStore_UpsertTickers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	res, err := s.UpsertTickers(ctx, []contracts.Ticker{
		{Symbol: "MSFT", Name: "Microsoft", Exchange: "NASDAQ"},
		{Symbol: "AAPL", Name: "Apple", Exchange: "NASDAQ"},
	})
	require.NoError(t, err)
	assert.Equal(t, contracts.SyncResult{Total: 2, New: 2, Updated: 0}, *res)

	res, err = s.UpsertTickers(ctx, []contracts.Ticker{
		{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ"},
		{Symbol: "IBM", Name: "IBM", Exchange: "NYSE"},
	})
	require.NoError(t, err)
	assert.Equal(t, contracts.SyncResult{Total: 2, New: 1, Updated: 1}, *res)

	tickers, err := s.ListTickers(ctx)
	require.NoError(t, err)
	require.Len(t, tickers, 3)
	assert.Equal(t, "AAPL", tickers[0].Symbol)
	assert.Equal(t, "Apple Inc.", tickers[0].Name)
	assert.Equal(t, "IBM", tickers[1].Symbol)

	n, err := s.CountTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStore_Prices(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.SaveBars(ctx, "AAPL", []contracts.Bar{
		{Date: day("2024-01-02"), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100, AdjClose: 1.5},
		{Date: day("2024-01-03"), Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 200, AdjClose: 2},
	})
	require.NoError(t, err)
	_, err = s.SaveBars(ctx, "MSFT", []contracts.Bar{
		{Date: day("2024-01-03"), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 50, AdjClose: 10.5},
	})
	require.NoError(t, err)

	// same key overwrites
	n, err := s.SaveBars(ctx, "AAPL", []contracts.Bar{
		{Date: day("2024-01-03"), Open: 1.5, High: 3, Low: 1, Close: 2.8, Volume: 250, AdjClose: 2.8},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	total, err := s.CountBars(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	series, err := s.GetPriceHistory(ctx, "AAPL", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, 2.8, series.Bars[1].Close)
	assert.Equal(t, int64(250), series.Bars[1].Volume)

	series, err = s.GetPriceHistory(ctx, "AAPL", day("2024-01-03"), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, series.Len())

	empty, err := s.GetPriceHistory(ctx, "ZZZZ", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "ZZZZ", empty.Ticker)
	assert.Equal(t, 0, empty.Len())

	recent, err := s.GetRecentPrices(ctx, day("2024-01-03"))
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "AAPL", recent[0].Ticker)
	assert.Equal(t, "MSFT", recent[1].Ticker)
	assert.Equal(t, 1, recent[0].Len())

	last, err := s.LastPriceDates(ctx)
	require.NoError(t, err)
	assert.True(t, last["AAPL"].Equal(day("2024-01-03")))
	assert.True(t, last["MSFT"].Equal(day("2024-01-03")))
}

func TestStore_Fundamentals(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetFundamentals(ctx, "AAPL")
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	f := &contracts.Fundamentals{
		Ticker:     "AAPL",
		Name:       "Apple",
		Sector:     "Technology",
		MarketCap:  contracts.Some(3e12),
		TrailingPE: contracts.Some(30),
		ForwardPE:  contracts.None(),
		Beta:       contracts.Some(1.2),
	}
	require.NoError(t, s.SaveFundamentals(ctx, f))

	got, err := s.GetFundamentals(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Technology", got.Sector)
	assert.Equal(t, contracts.Some(3e12), got.MarketCap)
	assert.False(t, got.ForwardPE.Valid)
	assert.False(t, got.DividendYield.Valid)
	assert.False(t, got.LastUpdated.IsZero())

	f.ForwardPE = contracts.Some(25)
	require.NoError(t, s.SaveFundamentals(ctx, f))
	require.NoError(t, s.SaveFundamentals(ctx, &contracts.Fundamentals{Ticker: "MSFT"}))

	all, err := s.GetAllFundamentals(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "AAPL", all[0].Ticker)
	assert.Equal(t, contracts.Some(25), all[0].ForwardPE)
}

func TestStore_DownloadLog(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	last := day("2024-01-03")
	require.NoError(t, s.SetStatus(ctx, contracts.DownloadLogEntry{Ticker: "AAPL", Status: contracts.StatusComplete, LastPriceDate: &last}))
	require.NoError(t, s.SetStatus(ctx, contracts.DownloadLogEntry{Ticker: "MSFT", Status: contracts.StatusFailed, ErrorMessage: "timeout"}))
	require.NoError(t, s.SetStatus(ctx, contracts.DownloadLogEntry{Ticker: "MSFT", Status: contracts.StatusFailed, ErrorMessage: "timeout again"}))
	require.NoError(t, s.SetStatus(ctx, contracts.DownloadLogEntry{Ticker: "ZZZZ", Status: contracts.StatusNoData}))

	msft, err := s.GetEntry(ctx, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 2, msft.RetryCount)
	assert.Equal(t, "timeout again", msft.ErrorMessage)
	assert.Nil(t, msft.LastPriceDate)

	// a later entry without a date keeps the stored one
	require.NoError(t, s.SetStatus(ctx, contracts.DownloadLogEntry{Ticker: "AAPL", Status: contracts.StatusComplete}))
	aapl, err := s.GetEntry(ctx, "AAPL")
	require.NoError(t, err)
	require.NotNil(t, aapl.LastPriceDate)
	assert.True(t, aapl.LastPriceDate.Equal(last))
	assert.Equal(t, 0, aapl.RetryCount)

	_, err = s.GetEntry(ctx, "NOPE")
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	failed, err := s.ListByStatus(ctx, contracts.StatusFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "MSFT", failed[0].Ticker)

	counts, err := s.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[contracts.StatusComplete])
	assert.Equal(t, 1, counts[contracts.StatusFailed])
	assert.Equal(t, 1, counts[contracts.StatusNoData])

	reset, err := s.ResetFailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT"}, reset)

	msft, err = s.GetEntry(ctx, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 0, msft.RetryCount)
	assert.Equal(t, contracts.StatusFailed, msft.Status)
}

func TestStore_QueryErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db)
	boom := errors.New("boom")

	mock.ExpectQuery("SELECT ticker, name, exchange FROM tickers").WillReturnError(boom)
	_, err = s.ListTickers(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "list tickers")

	mock.ExpectBegin().WillReturnError(boom)
	_, err = s.SaveBars(context.Background(), "AAPL", []contracts.Bar{{Date: day("2024-01-02"), Close: 1}})
	assert.ErrorIs(t, err, boom)

	mock.ExpectExec("INSERT INTO fundamentals").WillReturnError(boom)
	err = s.SaveFundamentals(context.Background(), &contracts.Fundamentals{Ticker: "AAPL"})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "AAPL")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_EmptyInputsSkipDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db)
	n, err := s.SaveBars(context.Background(), "AAPL", nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	res, err := s.UpsertTickers(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Total)

	assert.NoError(t, mock.ExpectationsWereMet())
}
