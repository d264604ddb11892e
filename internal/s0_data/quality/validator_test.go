package quality

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockrank/internal/contracts"
)

type fakeSource struct {
	tickers      []contracts.Ticker
	lastDates    map[string]time.Time
	fundamentals []contracts.Fundamentals
	err          error
}

func (f *fakeSource) ListTickers(ctx context.Context) ([]contracts.Ticker, error) {
	return f.tickers, f.err
}

func (f *fakeSource) LastPriceDates(ctx context.Context) (map[string]time.Time, error) {
	return f.lastDates, nil
}

func (f *fakeSource) GetAllFundamentals(ctx context.Context) ([]contracts.Fundamentals, error) {
	return f.fundamentals, nil
}

func TestQualityGate_Check(t *testing.T) {
	date := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{
		tickers: []contracts.Ticker{{Symbol: "AAPL"}, {Symbol: "MSFT"}, {Symbol: "IBM"}, {Symbol: "XOM"}},
		lastDates: map[string]time.Time{
			"AAPL": date,
			"MSFT": date.AddDate(0, 0, -1),
			"IBM":  date.AddDate(0, -1, 0),
		},
		fundamentals: []contracts.Fundamentals{{Ticker: "AAPL"}, {Ticker: "MSFT"}},
	}

	gate := NewQualityGate(src, DefaultConfig())
	snapshot, err := gate.Check(context.Background(), date)
	require.NoError(t, err)

	assert.Equal(t, 4, snapshot.TotalTickers)
	assert.Equal(t, 2, snapshot.ValidTickers)
	assert.InDelta(t, 0.75, snapshot.Coverage["price"], 1e-9)
	assert.InDelta(t, 0.50, snapshot.Coverage["fresh"], 1e-9)
	assert.InDelta(t, 0.50, snapshot.Coverage["fundamentals"], 1e-9)
	assert.False(t, snapshot.Passed)
	assert.InDelta(t, 0.75*0.40+0.50*0.35+0.50*0.25, snapshot.QualityScore, 1e-9)
}

func TestQualityGate_CheckEmptyUniverse(t *testing.T) {
	gate := NewQualityGate(&fakeSource{}, DefaultConfig())
	snapshot, err := gate.Check(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, snapshot.QualityScore)
	assert.False(t, snapshot.Passed)
}

func TestQualityGate_CheckError(t *testing.T) {
	gate := NewQualityGate(&fakeSource{err: errors.New("down")}, DefaultConfig())
	_, err := gate.Check(context.Background(), time.Now())
	assert.ErrorContains(t, err, "list tickers")
}

func TestQualityGate_calculateScore(t *testing.T) {
	gate := &QualityGate{config: Config{}}

	tests := []struct {
		name     string
		coverage map[string]float64
		wantMin  float64
		wantMax  float64
	}{
		{
			name:     "perfect coverage",
			coverage: map[string]float64{"price": 1.0, "fresh": 1.0, "fundamentals": 1.0},
			wantMin:  0.99,
			wantMax:  1.01,
		},
		{
			name:     "good coverage",
			coverage: map[string]float64{"price": 0.95, "fresh": 0.90, "fundamentals": 0.85},
			wantMin:  0.85,
			wantMax:  0.95,
		},
		{
			name:     "poor coverage",
			coverage: map[string]float64{"price": 0.60, "fresh": 0.50, "fundamentals": 0.30},
			wantMin:  0.40,
			wantMax:  0.55,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := gate.calculateScore(tt.coverage)
			assert.GreaterOrEqual(t, score, tt.wantMin)
			assert.LessOrEqual(t, score, tt.wantMax)
		})
	}
}
