package s2_signals

import (
	"math"

	"github.com/wonny/stockrank/internal/contracts"
)

// Signal scorers map the latest indicator readings to a score in [-1, 1].
// Undefined inputs always score 0.

// ScoreRSI scores the 14-period RSI.
// Oversold (<30) is bullish and overbought (>70) is bearish.
func ScoreRSI(rsi contracts.Num) float64 {
	if !rsi.Valid {
		return 0.0
	}
	v := rsi.Value
	switch {
	case v < 30:
		return 1.0
	case v < 45:
		return 0.5
	case v <= 55:
		return 0.0
	case v <= 70:
		return -0.5
	default:
		return -1.0
	}
}

// ScoreMACD scores histogram zero-crosses and histogram direction.
// An undefined previous histogram is treated as 0.
func ScoreMACD(m contracts.MACDReading, prevHist contracts.Num) float64 {
	if !m.Line.Valid || !m.Signal.Valid || !m.Histogram.Valid {
		return 0.0
	}
	hist := m.Histogram.Value
	prev := prevHist.Or(0.0)

	switch {
	case prev <= 0 && hist > 0:
		return 1.0
	case prev >= 0 && hist < 0:
		return -1.0
	case hist > 0 && hist > prev:
		return 0.5
	case hist < 0 && hist < prev:
		return -0.5
	default:
		return 0.0
	}
}

// ScoreMACrossover scores price against the SMA50/SMA200 regime
func ScoreMACrossover(price float64, sma50, sma200 contracts.Num) float64 {
	if math.IsNaN(price) || !sma50.Valid || !sma200.Valid {
		return 0.0
	}
	above := price > sma50.Value

	if sma50.Value > sma200.Value {
		// golden regime
		if above {
			return 1.0
		}
		return -0.25
	}

	if above {
		return 0.5
	}
	return -1.0
}

// ScoreBollinger scores the price position within the bands.
// Zero-width bands score 0.
func ScoreBollinger(price float64, b contracts.BandsReading) float64 {
	if math.IsNaN(price) || !b.Lower.Valid || !b.Mid.Valid || !b.Upper.Valid {
		return 0.0
	}
	width := b.Upper.Value - b.Lower.Value
	if width == 0 {
		return 0.0
	}

	position := (price - b.Lower.Value) / width
	switch {
	case position <= 0:
		return 1.0
	case position <= 0.2:
		return 0.5
	case position <= 0.8:
		return 0.0
	case position < 1.0:
		return -0.5
	default:
		return -1.0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
