package s1_universe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/logger"
)

type fakeListings struct {
	tickers []contracts.Ticker
	err     error
}

func (f *fakeListings) FetchListings(ctx context.Context) ([]contracts.Ticker, error) {
	return f.tickers, f.err
}

type memTickers struct {
	stored map[string]contracts.Ticker
}

func (m *memTickers) UpsertTickers(ctx context.Context, tickers []contracts.Ticker) (*contracts.SyncResult, error) {
	res := &contracts.SyncResult{Total: len(tickers)}
	for _, t := range tickers {
		if _, ok := m.stored[t.Symbol]; ok {
			res.Updated++
		} else {
			res.New++
		}
		m.stored[t.Symbol] = t
	}
	return res, nil
}

func (m *memTickers) ListTickers(ctx context.Context) ([]contracts.Ticker, error) {
	out := make([]contracts.Ticker, 0, len(m.stored))
	for _, t := range m.stored {
		out = append(out, t)
	}
	return out, nil
}

func (m *memTickers) CountTickers(ctx context.Context) (int, error) {
	return len(m.stored), nil
}

func TestSyncer_Sync(t *testing.T) {
	repo := &memTickers{stored: map[string]contracts.Ticker{
		"AAPL": {Symbol: "AAPL", Name: "Apple"},
	}}
	src := &fakeListings{tickers: []contracts.Ticker{
		{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ"},
		{Symbol: "MSFT", Name: "Microsoft", Exchange: "NASDAQ"},
		{Symbol: "ABCW", Name: "ABC Warrant", Exchange: "NASDAQ"},
	}}

	s := NewSyncer(src, repo, NewBuilder(DefaultConfig()), logger.Nop())
	res, err := s.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, contracts.SyncResult{Total: 2, New: 1, Updated: 1}, *res)
	assert.Equal(t, "Apple Inc.", repo.stored["AAPL"].Name)
	assert.NotContains(t, repo.stored, "ABCW")
}

func TestSyncer_SyncSourceError(t *testing.T) {
	s := NewSyncer(&fakeListings{err: errors.New("offline")}, &memTickers{stored: map[string]contracts.Ticker{}},
		NewBuilder(DefaultConfig()), logger.Nop())

	_, err := s.Sync(context.Background())
	assert.ErrorContains(t, err, "fetch listings")
}

func TestSyncer_DetectDelistings(t *testing.T) {
	repo := &memTickers{stored: map[string]contracts.Ticker{
		"ZZZ":  {Symbol: "ZZZ"},
		"AAPL": {Symbol: "AAPL"},
		"OLD":  {Symbol: "OLD"},
	}}
	src := &fakeListings{tickers: []contracts.Ticker{{Symbol: "AAPL", Name: "Apple"}}}

	s := NewSyncer(src, repo, NewBuilder(DefaultConfig()), logger.Nop())
	gone, err := s.DetectDelistings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"OLD", "ZZZ"}, gone)
}

func TestDelisted_None(t *testing.T) {
	got := Delisted(nil, []contracts.Ticker{{Symbol: "AAPL"}})
	assert.Empty(t, got)
	assert.NotNil(t, got)
}
