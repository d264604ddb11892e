package selection

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockrank/internal/contracts"
)

func makeSeries(ticker string, n int, f func(i int) float64) contracts.Series {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.Bar, n)
	for i := range bars {
		c := f(i)
		bars[i] = contracts.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000,
		}
	}
	return contracts.Series{Ticker: ticker, Bars: bars}
}

func testUniverse() ([]contracts.Fundamentals, []contracts.Series) {
	fundamentals := []contracts.Fundamentals{
		{Ticker: "AAA", Name: "Alpha", Sector: "Technology", TrailingPE: contracts.Some(15), DividendYield: contracts.Some(0.01), Beta: contracts.Some(1.1), MarketCap: contracts.Some(2e12), TargetMedian: contracts.Some(200)},
		{Ticker: "BBB", Name: "Beta", Sector: "Energy", ForwardPE: contracts.Some(8), DividendYield: contracts.Some(0.05), Beta: contracts.Some(0.8), MarketCap: contracts.Some(5e10), TargetMedian: contracts.Some(60)},
		{Ticker: "CCC", Name: "Gamma", Sector: "Utilities", TrailingPE: contracts.Some(-3), Beta: contracts.Some(2.2), MarketCap: contracts.Some(1e9)},
	}

	histories := []contracts.Series{
		makeSeries("AAA", 250, func(i int) float64 { return 100 + 0.3*float64(i) + 4*math.Sin(float64(i)/5) }),
		makeSeries("BBB", 250, func(i int) float64 { return 80 - 0.1*float64(i) + 3*math.Sin(float64(i)/4) }),
		makeSeries("CCC", 250, func(i int) float64 { return 30 + 2*math.Sin(float64(i)/9) }),
	}
	return fundamentals, histories
}

func TestScoreUniverse_TechnicalOnly(t *testing.T) {
	fundamentals, histories := testUniverse()

	rows := ScoreUniverse(fundamentals, histories, Weights{Technical: 1.0, Fundamental: 0.0})

	require.Len(t, rows, 3)
	for i, r := range rows {
		assert.InDelta(t, r.TechnicalScore, r.CompositeScore, 1e-6)
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, rows[i-1].CompositeScore, r.CompositeScore)
		}
	}
}

func TestScoreUniverse_RowContents(t *testing.T) {
	fundamentals, histories := testUniverse()

	rows := ScoreUniverse(fundamentals, histories, DefaultWeights())

	byTicker := make(map[string]contracts.RankedRow)
	for _, r := range rows {
		byTicker[r.Ticker] = r
		assert.GreaterOrEqual(t, r.CompositeScore, 0.0)
		assert.LessOrEqual(t, r.CompositeScore, 1.0)
		assert.InDelta(t, 0.6*r.TechnicalScore+0.4*r.FundamentalScore, r.CompositeScore, 1e-12)
	}

	aaa := byTicker["AAA"]
	assert.Equal(t, "Alpha", aaa.Name)
	assert.Equal(t, "Technology", aaa.Sector)
	assert.Equal(t, histories[0].Bars[249].Close, aaa.Price)
	assert.True(t, aaa.TargetUpside.Valid)
	assert.True(t, aaa.RSIValue.Valid)

	ccc := byTicker["CCC"]
	assert.False(t, ccc.PE.Valid)
	assert.False(t, ccc.TargetUpside.Valid)
}

func TestScoreUniverse_Exclusions(t *testing.T) {
	fundamentals, histories := testUniverse()

	// DDD has prices but no fundamentals, CCC has too little history
	histories = append(histories, makeSeries("DDD", 250, func(i int) float64 { return 50 }))
	histories[2] = makeSeries("CCC", 25, func(i int) float64 { return 30 })

	rows := ScoreUniverse(fundamentals, histories, DefaultWeights())

	tickers := make([]string, 0, len(rows))
	for _, r := range rows {
		tickers = append(tickers, r.Ticker)
	}
	assert.ElementsMatch(t, []string{"AAA", "BBB"}, tickers)
}

func TestScoreUniverse_Empty(t *testing.T) {
	_, histories := testUniverse()

	rows := ScoreUniverse(nil, histories, DefaultWeights())
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	fundamentals, _ := testUniverse()
	assert.Empty(t, ScoreUniverse(fundamentals, nil, DefaultWeights()))

	short := []contracts.Series{makeSeries("AAA", 10, func(i int) float64 { return 1 })}
	assert.Empty(t, ScoreUniverse(fundamentals, short, DefaultWeights()))
}

func TestScoreUniverse_StableTies(t *testing.T) {
	flat := func(i int) float64 { return 100 }
	histories := []contracts.Series{
		makeSeries("ZZZ", 60, flat),
		makeSeries("AAA", 60, flat),
		makeSeries("MMM", 60, flat),
	}
	fundamentals := []contracts.Fundamentals{{Ticker: "AAA"}, {Ticker: "MMM"}, {Ticker: "ZZZ"}}

	rows := ScoreUniverse(fundamentals, histories, DefaultWeights())

	require.Len(t, rows, 3)
	assert.Equal(t, "ZZZ", rows[0].Ticker)
	assert.Equal(t, "AAA", rows[1].Ticker)
	assert.Equal(t, "MMM", rows[2].Ticker)
}

func TestScoreUniverse_RepeatedHistoryTicker(t *testing.T) {
	fundamentals, histories := testUniverse()
	rising := makeSeries("AAA", 250, func(i int) float64 { return 50 + float64(i) })
	histories = append(histories, rising)

	rows := ScoreUniverse(fundamentals, histories, DefaultWeights())
	baseFundamentals, baseHistories := testUniverse()
	base := ScoreUniverse(baseFundamentals, baseHistories, DefaultWeights())

	require.Len(t, rows, len(base))
	count := 0
	for _, r := range rows {
		if r.Ticker == "AAA" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, base, rows)
}

func TestWeights_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Weights
		want Weights
	}{
		{"already normalized", Weights{0.6, 0.4}, Weights{0.6, 0.4}},
		{"scaled", Weights{3, 1}, Weights{0.75, 0.25}},
		{"technical only", Weights{1, 0}, Weights{1, 0}},
		{"zero falls back", Weights{0, 0}, DefaultWeights()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			assert.InDelta(t, tt.want.Technical, got.Technical, 1e-12)
			assert.InDelta(t, tt.want.Fundamental, got.Fundamental, 1e-12)
		})
	}
}
