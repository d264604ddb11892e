package selection

import (
	"sort"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/internal/s2_signals"
)

// Weights blends the technical and fundamental scores
type Weights struct {
	Technical   float64 `json:"technical" yaml:"technical"`
	Fundamental float64 `json:"fundamental" yaml:"fundamental"`
}

// DefaultWeights returns the default composite weighting
func DefaultWeights() Weights {
	return Weights{Technical: 0.6, Fundamental: 0.4}
}

// Normalize scales the weights to sum to 1.
// A non-positive total falls back to the defaults.
func (w Weights) Normalize() Weights {
	total := w.Technical + w.Fundamental
	if total <= 0 {
		return DefaultWeights()
	}
	return Weights{Technical: w.Technical / total, Fundamental: w.Fundamental / total}
}

// Params holds every tunable of a universe scoring run
type Params struct {
	Weights     Weights                       `json:"weights" yaml:"weights"`
	Technical   s2_signals.TechnicalParams    `json:"technical" yaml:"technical"`
	Fundamental s2_signals.FundamentalWeights `json:"fundamental" yaml:"fundamental"`
}

// DefaultParams returns the default scoring params
func DefaultParams() Params {
	return Params{
		Weights:     DefaultWeights(),
		Technical:   s2_signals.DefaultTechnicalParams(),
		Fundamental: s2_signals.DefaultFundamentalWeights(),
	}
}

// ScoreUniverse ranks a universe with the default signal params
func ScoreUniverse(fundamentals []contracts.Fundamentals, histories []contracts.Series, weights Weights) []contracts.RankedRow {
	params := DefaultParams()
	params.Weights = weights
	return ScoreUniverseWith(fundamentals, histories, params)
}

// ScoreUniverseWith ranks every ticker that has both enough price history
// and a fundamentals row, sorted by composite score descending. Exact ties
// keep the order of histories.
// ⭐ SSOT: 종합 점수 랭킹은 여기서만
func ScoreUniverseWith(fundamentals []contracts.Fundamentals, histories []contracts.Series, params Params) []contracts.RankedRow {
	w := params.Weights.Normalize()

	technical := make([]*contracts.TechnicalResult, 0, len(histories))
	latestPrice := make(map[string]float64, len(histories))
	seen := make(map[string]bool, len(histories))
	for _, series := range histories {
		// repeated tickers: first series wins
		if seen[series.Ticker] {
			continue
		}
		seen[series.Ticker] = true
		res, ok := s2_signals.ComputeTechnicalScoreWith(series, params.Technical)
		if !ok {
			continue
		}
		technical = append(technical, res)
		latestPrice[res.Ticker] = res.Price
	}

	if len(technical) == 0 || len(fundamentals) == 0 {
		return []contracts.RankedRow{}
	}

	// left join: tickers without a scored price keep a missing price
	joined := make([]contracts.Fundamentals, len(fundamentals))
	for i, f := range fundamentals {
		f.Price = contracts.None()
		if p, ok := latestPrice[f.Ticker]; ok {
			f.Price = contracts.NumFromFloat(p)
		}
		joined[i] = f
	}

	scored := s2_signals.ComputeFundamentalScoresWith(joined, params.Fundamental)
	byTicker := make(map[string]*contracts.FundamentalResult, len(scored))
	for i := range scored {
		if _, dup := byTicker[scored[i].Ticker]; !dup {
			byTicker[scored[i].Ticker] = &scored[i]
		}
	}

	rows := make([]contracts.RankedRow, 0, len(technical))
	for _, tech := range technical {
		fund, ok := byTicker[tech.Ticker]
		if !ok {
			continue
		}
		rows = append(rows, contracts.RankedRow{
			Ticker:           tech.Ticker,
			Name:             fund.Name,
			Sector:           fund.Sector,
			CompositeScore:   w.Technical*tech.TechnicalScore + w.Fundamental*fund.FundamentalScore,
			TechnicalScore:   tech.TechnicalScore,
			FundamentalScore: fund.FundamentalScore,
			Price:            tech.Price,
			RSIValue:         tech.RSIValue,
			PE:               fund.PE,
			MarketCap:        fund.MarketCap,
			TargetMean:       fund.TargetMean,
			TargetHigh:       fund.TargetHigh,
			TargetLow:        fund.TargetLow,
			NumAnalysts:      fund.NumAnalysts,
			TargetUpside:     fund.TargetUpside,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CompositeScore > rows[j].CompositeScore
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}

	return rows
}
