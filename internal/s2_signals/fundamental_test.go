package s2_signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockrank/internal/contracts"
)

func TestRankColumn(t *testing.T) {
	col := RankColumn([]contracts.Num{
		contracts.Some(10),
		contracts.None(),
		contracts.Some(30),
		contracts.Some(20),
		contracts.Some(20),
	})

	require.Equal(t, 5, col.Len())
	assert.InDelta(t, 0.25, col.At(0).Value, 1e-12)
	assert.False(t, col.At(1).Valid)
	assert.InDelta(t, 1.0, col.At(2).Value, 1e-12)
	// ties share the rank of the highest tied position
	assert.InDelta(t, 0.75, col.At(3).Value, 1e-12)
	assert.InDelta(t, 0.75, col.At(4).Value, 1e-12)

	assert.False(t, col.At(-1).Valid)
	assert.False(t, col.At(5).Valid)
}

func TestRankColumn_AllMissing(t *testing.T) {
	col := RankColumn([]contracts.Num{contracts.None(), contracts.None()})
	assert.False(t, col.At(0).Valid)
	assert.Equal(t, 0.5, col.Score(0, ascending, 0.5))
}

func TestEffectivePE(t *testing.T) {
	tests := []struct {
		name     string
		forward  contracts.Num
		trailing contracts.Num
		want     contracts.Num
	}{
		{"forward preferred", contracts.Some(15), contracts.Some(20), contracts.Some(15)},
		{"trailing fallback", contracts.None(), contracts.Some(20), contracts.Some(20)},
		{"negative trailing", contracts.None(), contracts.Some(-5), contracts.None()},
		{"negative forward does not fall back", contracts.Some(-3), contracts.Some(20), contracts.None()},
		{"zero", contracts.Some(0), contracts.None(), contracts.None()},
		{"both missing", contracts.None(), contracts.None(), contracts.None()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectivePE(tt.forward, tt.trailing))
		})
	}
}

func TestComputeFundamentalScores_PE(t *testing.T) {
	rows := []contracts.Fundamentals{
		{Ticker: "NEG", TrailingPE: contracts.Some(-5)},
		{Ticker: "CHEAP", TrailingPE: contracts.Some(10)},
		{Ticker: "RICH", TrailingPE: contracts.Some(20)},
	}

	got := ComputeFundamentalScores(rows)

	require.Len(t, got, 3)
	assert.False(t, got[0].PE.Valid)
	assert.Equal(t, 0.0, got[0].PEScore)
	assert.InDelta(t, 0.5, got[1].PEScore, 1e-12)
	assert.InDelta(t, 0.0, got[2].PEScore, 1e-12)
}

func TestComputeFundamentalScores_TargetUpsideMonotonic(t *testing.T) {
	base := contracts.Fundamentals{
		TrailingPE:    contracts.Some(20),
		DividendYield: contracts.Some(0.02),
		Beta:          contracts.Some(1.1),
		MarketCap:     contracts.Some(1e10),
		Price:         contracts.Some(100),
	}

	rows := make([]contracts.Fundamentals, 0, 3)
	for _, target := range []float64{150, 110, 90} {
		r := base
		r.TargetMedian = contracts.Some(target)
		rows = append(rows, r)
	}

	got := ComputeFundamentalScores(rows)

	assert.InDelta(t, 0.5, got[0].TargetUpside.Value, 1e-12)
	assert.InDelta(t, -0.1, got[2].TargetUpside.Value, 1e-12)
	assert.Greater(t, got[0].TargetUpsideScore, got[1].TargetUpsideScore)
	assert.Greater(t, got[1].TargetUpsideScore, got[2].TargetUpsideScore)
}

func TestComputeFundamentalScores_Defaults(t *testing.T) {
	rows := []contracts.Fundamentals{
		{Ticker: "EMPTY"},
		{Ticker: "ZEROPRICE", TargetMedian: contracts.Some(50), Price: contracts.Some(0)},
	}

	got := ComputeFundamentalScores(rows)

	for _, r := range got {
		assert.Equal(t, 0.0, r.PEScore)
		assert.Equal(t, 0.0, r.DividendScore)
		assert.Equal(t, 0.5, r.BetaScore)
		assert.Equal(t, 0.0, r.MarketCapScore)
		assert.False(t, r.TargetUpside.Valid)
		assert.Equal(t, 0.0, r.TargetUpsideScore)
		assert.InDelta(t, 0.15*0.5, r.FundamentalScore, 1e-12)
	}
}

func TestComputeFundamentalScores_DividendCapAndBeta(t *testing.T) {
	rows := []contracts.Fundamentals{
		{Ticker: "A", DividendYield: contracts.Some(0.25), Beta: contracts.Some(1.0)},
		{Ticker: "B", DividendYield: contracts.Some(0.12), Beta: contracts.Some(2.0)},
		{Ticker: "C", DividendYield: contracts.Some(0.01), Beta: contracts.Some(0.5)},
	}

	got := ComputeFundamentalScores(rows)

	// A and B both cap at 10% and tie
	assert.Equal(t, got[0].DividendScore, got[1].DividendScore)
	assert.InDelta(t, 1.0, got[0].DividendScore, 1e-12)
	assert.InDelta(t, 1.0/3, got[2].DividendScore, 1e-12)

	// closest to market beta ranks highest
	assert.Greater(t, got[0].BetaScore, got[2].BetaScore)
	assert.Greater(t, got[2].BetaScore, got[1].BetaScore)
}

func TestComputeFundamentalScores_Bounds(t *testing.T) {
	rows := []contracts.Fundamentals{
		{Ticker: "A", TrailingPE: contracts.Some(5), DividendYield: contracts.Some(0.05), Beta: contracts.Some(1), MarketCap: contracts.Some(3e12), TargetMedian: contracts.Some(300), Price: contracts.Some(100)},
		{Ticker: "B", ForwardPE: contracts.Some(40), DividendYield: contracts.Some(0), Beta: contracts.Some(3), MarketCap: contracts.Some(1e8), TargetMedian: contracts.Some(10), Price: contracts.Some(100)},
		{Ticker: "C"},
	}

	for _, r := range ComputeFundamentalScores(rows) {
		assert.GreaterOrEqual(t, r.FundamentalScore, 0.0)
		assert.LessOrEqual(t, r.FundamentalScore, 1.0)
	}
}

func TestComputeFundamentalScores_Empty(t *testing.T) {
	assert.Empty(t, ComputeFundamentalScores(nil))
}
