package s2_signals

import (
	"math"

	"github.com/wonny/stockrank/internal/contracts"
)

// MaxDividendYield caps yields before ranking to blunt distressed-yield outliers
const MaxDividendYield = 0.10

// Defaults for rows missing a sub-score input
const (
	defaultPEScore        = 0.0
	defaultDividendScore  = 0.0
	defaultBetaScore      = 0.5
	defaultMarketCapScore = 0.0
	defaultUpsideScore    = 0.0
)

// FundamentalWeights weights the five fundamental sub-scores
type FundamentalWeights struct {
	PE           float64 `json:"pe" yaml:"pe"`
	Dividend     float64 `json:"dividend" yaml:"dividend"`
	Beta         float64 `json:"beta" yaml:"beta"`
	MarketCap    float64 `json:"market_cap" yaml:"market_cap"`
	TargetUpside float64 `json:"target_upside" yaml:"target_upside"`
}

// Sum returns the total weight
func (w FundamentalWeights) Sum() float64 {
	return w.PE + w.Dividend + w.Beta + w.MarketCap + w.TargetUpside
}

// DefaultFundamentalWeights returns the standard weighting
func DefaultFundamentalWeights() FundamentalWeights {
	return FundamentalWeights{
		PE:           0.25,
		Dividend:     0.20,
		Beta:         0.15,
		MarketCap:    0.25,
		TargetUpside: 0.15,
	}
}

// fundamentalColumns is the collect phase: one derived column per sub-score
type fundamentalColumns struct {
	pe        []contracts.Num
	dividend  []contracts.Num
	betaDist  []contracts.Num
	marketCap []contracts.Num
	upside    []contracts.Num
}

func collectColumns(rows []contracts.Fundamentals) fundamentalColumns {
	n := len(rows)
	cols := fundamentalColumns{
		pe:        make([]contracts.Num, n),
		dividend:  make([]contracts.Num, n),
		betaDist:  make([]contracts.Num, n),
		marketCap: make([]contracts.Num, n),
		upside:    make([]contracts.Num, n),
	}

	for i, r := range rows {
		cols.pe[i] = EffectivePE(r.ForwardPE, r.TrailingPE)

		if r.DividendYield.Valid {
			cols.dividend[i] = contracts.Some(math.Min(r.DividendYield.Value, MaxDividendYield))
		}
		if r.Beta.Valid {
			cols.betaDist[i] = contracts.Some(math.Abs(r.Beta.Value - 1.0))
		}
		cols.marketCap[i] = r.MarketCap
		cols.upside[i] = TargetUpside(r.TargetMedian, r.Price)
	}
	return cols
}

// EffectivePE prefers forward P/E over trailing P/E.
// Non-positive multiples are not comparable and count as missing.
func EffectivePE(forward, trailing contracts.Num) contracts.Num {
	pe := trailing
	if forward.Valid {
		pe = forward
	}
	if !pe.Valid || pe.Value <= 0 {
		return contracts.None()
	}
	return pe
}

// TargetUpside is (target - price) / price, missing for a non-positive price
func TargetUpside(target, price contracts.Num) contracts.Num {
	if !target.Valid || !price.Valid || price.Value <= 0 {
		return contracts.None()
	}
	return contracts.NumFromFloat((target.Value - price.Value) / price.Value)
}

// ComputeFundamentalScores scores a universe with the default weights
func ComputeFundamentalScores(rows []contracts.Fundamentals) []contracts.FundamentalResult {
	return ComputeFundamentalScoresWith(rows, DefaultFundamentalWeights())
}

// ComputeFundamentalScoresWith scores a universe cross-sectionally.
// Every sub-score is a percentile rank among the rows passed in, so the
// caller must pass the complete universe snapshot at once.
func ComputeFundamentalScoresWith(rows []contracts.Fundamentals, w FundamentalWeights) []contracts.FundamentalResult {
	cols := collectColumns(rows)

	peRank := RankColumn(cols.pe)
	dividendRank := RankColumn(cols.dividend)
	betaRank := RankColumn(cols.betaDist)
	marketCapRank := RankColumn(cols.marketCap)
	upsideRank := RankColumn(cols.upside)

	out := make([]contracts.FundamentalResult, len(rows))
	for i, r := range rows {
		res := contracts.FundamentalResult{
			Fundamentals: r,
			PE:           cols.pe[i],
			TargetUpside: cols.upside[i],
		}

		res.PEScore = peRank.Score(i, descending, defaultPEScore)
		res.DividendScore = dividendRank.Score(i, ascending, defaultDividendScore)
		res.BetaScore = betaRank.Score(i, descending, defaultBetaScore)
		res.MarketCapScore = marketCapRank.Score(i, ascending, defaultMarketCapScore)
		res.TargetUpsideScore = upsideRank.Score(i, ascending, defaultUpsideScore)

		res.FundamentalScore = clamp(
			w.PE*res.PEScore+
				w.Dividend*res.DividendScore+
				w.Beta*res.BetaScore+
				w.MarketCap*res.MarketCapScore+
				w.TargetUpside*res.TargetUpsideScore,
			0.0, 1.0)

		out[i] = res
	}
	return out
}
