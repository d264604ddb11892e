package s2_signals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/stockrank/internal/contracts"
)

func bands(lower, mid, upper float64) contracts.BandsReading {
	return contracts.BandsReading{
		Lower: contracts.Some(lower),
		Mid:   contracts.Some(mid),
		Upper: contracts.Some(upper),
	}
}

func TestScoreRSI(t *testing.T) {
	tests := []struct {
		name string
		rsi  contracts.Num
		want float64
	}{
		{"oversold", contracts.Some(25), 1.0},
		{"lower boundary", contracts.Some(30), 0.5},
		{"weak", contracts.Some(40), 0.5},
		{"neutral low", contracts.Some(45), 0.0},
		{"neutral", contracts.Some(50), 0.0},
		{"neutral high", contracts.Some(55), 0.0},
		{"strong", contracts.Some(60), -0.5},
		{"upper boundary", contracts.Some(70), -0.5},
		{"overbought", contracts.Some(75), -1.0},
		{"undefined", contracts.None(), 0.0},
		{"nan", contracts.NumFromFloat(math.NaN()), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreRSI(tt.rsi))
		})
	}
}

func TestScoreMACD(t *testing.T) {
	reading := func(hist float64) contracts.MACDReading {
		return contracts.MACDReading{
			Line:      contracts.Some(1),
			Signal:    contracts.Some(1 - hist),
			Histogram: contracts.Some(hist),
		}
	}

	tests := []struct {
		name string
		m    contracts.MACDReading
		prev contracts.Num
		want float64
	}{
		{"bullish cross", reading(0.5), contracts.Some(-0.2), 1.0},
		{"bullish cross from zero", reading(0.5), contracts.Some(0), 1.0},
		{"bearish cross", reading(-0.5), contracts.Some(0.2), -1.0},
		{"positive growing", reading(0.5), contracts.Some(0.3), 0.5},
		{"positive shrinking", reading(0.3), contracts.Some(0.5), 0.0},
		{"negative shrinking", reading(-0.5), contracts.Some(-0.3), -0.5},
		{"negative recovering", reading(-0.3), contracts.Some(-0.5), 0.0},
		{"undefined prev treated as zero", reading(0.5), contracts.None(), 1.0},
		{"undefined signal", contracts.MACDReading{Line: contracts.Some(1), Histogram: contracts.Some(1)}, contracts.Some(0), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreMACD(tt.m, tt.prev))
		})
	}
}

func TestScoreMACrossover(t *testing.T) {
	tests := []struct {
		name   string
		price  float64
		sma50  contracts.Num
		sma200 contracts.Num
		want   float64
	}{
		{"golden above", 110, contracts.Some(105), contracts.Some(100), 1.0},
		{"golden below", 100, contracts.Some(105), contracts.Some(100), -0.25},
		{"death above", 97, contracts.Some(95), contracts.Some(100), 0.5},
		{"death below", 90, contracts.Some(95), contracts.Some(100), -1.0},
		{"equal averages is death regime", 90, contracts.Some(100), contracts.Some(100), -1.0},
		{"missing sma200", 110, contracts.Some(105), contracts.None(), 0.0},
		{"nan price", math.NaN(), contracts.Some(105), contracts.Some(100), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreMACrossover(tt.price, tt.sma50, tt.sma200))
		})
	}
}

func TestScoreBollinger(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		b     contracts.BandsReading
		want  float64
	}{
		{"below lower", 95, bands(100, 110, 120), 1.0},
		{"at lower", 100, bands(100, 110, 120), 1.0},
		{"near lower", 103, bands(100, 110, 120), 0.5},
		{"middle", 110, bands(100, 110, 120), 0.0},
		{"near upper", 118, bands(100, 110, 120), -0.5},
		{"at upper", 120, bands(100, 110, 120), -1.0},
		{"above upper", 125, bands(100, 110, 120), -1.0},
		{"zero width", 100, bands(100, 100, 100), 0.0},
		{"missing band", 100, contracts.BandsReading{Mid: contracts.Some(100)}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreBollinger(tt.price, tt.b))
		})
	}
}

func TestScorersStayInRange(t *testing.T) {
	for v := -10.0; v <= 110; v += 0.5 {
		s := ScoreRSI(contracts.Some(v))
		assert.True(t, s >= -1 && s <= 1, "rsi %v scored %v", v, s)

		s = ScoreBollinger(v, bands(40, 50, 60))
		assert.True(t, s >= -1 && s <= 1, "price %v scored %v", v, s)

		s = ScoreMACrossover(v, contracts.Some(50), contracts.Some(45))
		assert.True(t, s >= -1 && s <= 1, "price %v scored %v", v, s)
	}
}
