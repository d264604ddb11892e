package s2_signals

import (
	"context"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/pkg/logger"
)

// MinTechnicalBars is the shortest history that can be scored (the slow MACD EMA)
const MinTechnicalBars = 26

// TechnicalWeights weights the five per-signal scores
type TechnicalWeights struct {
	RSI         float64 `json:"rsi" yaml:"rsi"`
	MACD        float64 `json:"macd" yaml:"macd"`
	MACrossover float64 `json:"ma_crossover" yaml:"ma_crossover"`
	BBands      float64 `json:"bbands" yaml:"bbands"`
	Momentum    float64 `json:"momentum" yaml:"momentum"`
}

// Sum returns the total weight
func (w TechnicalWeights) Sum() float64 {
	return w.RSI + w.MACD + w.MACrossover + w.BBands + w.Momentum
}

// TechnicalParams configures the technical aggregator
type TechnicalParams struct {
	Weights     TechnicalWeights `json:"weights" yaml:"weights"`
	SwingWindow int              `json:"swing_window" yaml:"swing_window"`
	SwingCount  int              `json:"swing_count" yaml:"swing_count"`
}

// DefaultTechnicalParams returns the standard weighting.
// MACD and Bollinger scores are reported but carry zero weight.
func DefaultTechnicalParams() TechnicalParams {
	return TechnicalParams{
		Weights: TechnicalWeights{
			RSI:         0.20,
			MACD:        0.0,
			MACrossover: 0.30,
			BBands:      0.0,
			Momentum:    0.50,
		},
		SwingWindow: DefaultSwingWindow,
		SwingCount:  DefaultSwingCount,
	}
}

// ComputeTechnicalScore scores one ticker's history with the default params.
// Returns false when the series has fewer than MinTechnicalBars bars.
func ComputeTechnicalScore(series contracts.Series) (*contracts.TechnicalResult, bool) {
	return ComputeTechnicalScoreWith(series, DefaultTechnicalParams())
}

// ComputeTechnicalScoreWith scores one ticker's history with custom params
func ComputeTechnicalScoreWith(series contracts.Series, params TechnicalParams) (*contracts.TechnicalResult, bool) {
	n := series.Len()
	if n < MinTechnicalBars {
		return nil, false
	}

	closes := series.Closes()
	last := n - 1
	price := closes[last]

	rsi := RSI(closes, 14)
	macd := MACD(closes, 12, 26, 9)
	sma50 := SMA(closes, 50)
	sma200 := SMA(closes, 200)
	bands := BollingerBands(closes, 20, 2.0)

	res := &contracts.TechnicalResult{
		Ticker:       series.Ticker,
		Price:        price,
		RSIValue:     lastNum(rsi),
		MACD:         macd.At(last),
		PrevMACDHist: macd.Histogram[last-1],
		SMA50:        lastNum(sma50),
		SMA200:       lastNum(sma200),
		Bands:        bands.At(last),
	}

	res.RSIScore = ScoreRSI(res.RSIValue)
	res.MACDScore = ScoreMACD(res.MACD, res.PrevMACDHist)
	res.MACrossoverScore = ScoreMACrossover(price, res.SMA50, res.SMA200)
	res.BBandsScore = ScoreBollinger(price, res.Bands)
	res.MomentumScore = ScoreMomentum(series.Highs(), series.Lows(), params.SwingWindow, params.SwingCount)

	w := params.Weights
	weighted := w.RSI*res.RSIScore +
		w.MACD*res.MACDScore +
		w.MACrossover*res.MACrossoverScore +
		w.BBands*res.BBandsScore +
		w.Momentum*res.MomentumScore

	res.TechnicalScore = clamp((weighted+1)/2, 0.0, 1.0)
	return res, true
}

// TechnicalCalculator scores single tickers for the API and chart commands
// ⭐ SSOT: 기술적 지표 점수 계산은 여기서만
type TechnicalCalculator struct {
	params TechnicalParams
	logger *logger.Logger
}

// NewTechnicalCalculator creates a new technical calculator
func NewTechnicalCalculator(params TechnicalParams, log *logger.Logger) *TechnicalCalculator {
	return &TechnicalCalculator{
		params: params,
		logger: log,
	}
}

// Calculate scores one series, returning contracts.ErrNoData when it is too short
func (c *TechnicalCalculator) Calculate(ctx context.Context, series contracts.Series) (*contracts.TechnicalResult, error) {
	res, ok := ComputeTechnicalScoreWith(series, c.params)
	if !ok {
		c.logger.WithFields(map[string]interface{}{
			"ticker": series.Ticker,
			"bars":   series.Len(),
		}).Debug("Insufficient history for technical score")
		return nil, contracts.ErrNoData
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":          series.Ticker,
		"rsi_score":       res.RSIScore,
		"ma_score":        res.MACrossoverScore,
		"momentum_score":  res.MomentumScore,
		"technical_score": res.TechnicalScore,
	}).Debug("Calculated technical score")

	return res, nil
}
