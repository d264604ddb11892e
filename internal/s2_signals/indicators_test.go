package s2_signals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestSMA(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)

	assert.False(t, got[0].Valid)
	assert.False(t, got[1].Valid)
	assert.InDelta(t, 2.0, got[2].Value, 1e-12)
	assert.InDelta(t, 3.0, got[3].Value, 1e-12)
	assert.InDelta(t, 4.0, got[4].Value, 1e-12)

	short := SMA([]float64{1, 2}, 3)
	assert.False(t, short[1].Valid)
}

func TestEMA(t *testing.T) {
	got := EMA([]float64{2, 4, 6, 8}, 3)

	assert.False(t, got[1].Valid)
	// seeded with SMA(2,4,6) = 4, alpha = 0.5
	assert.InDelta(t, 4.0, got[2].Value, 1e-12)
	assert.InDelta(t, 6.0, got[3].Value, 1e-12)
}

func TestRSI(t *testing.T) {
	t.Run("only gains", func(t *testing.T) {
		got := RSI(linear(20, 10, 1), 14)
		assert.False(t, got[13].Valid)
		require.True(t, got[14].Valid)
		assert.InDelta(t, 100.0, got[19].Value, 1e-9)
	})

	t.Run("only losses", func(t *testing.T) {
		got := RSI(linear(20, 100, -1), 14)
		assert.InDelta(t, 0.0, got[19].Value, 1e-9)
	})

	t.Run("alternating", func(t *testing.T) {
		values := make([]float64, 30)
		for i := range values {
			values[i] = 100 + float64(i%2)
		}
		got := RSI(values, 14)
		v := got[29]
		require.True(t, v.Valid)
		assert.True(t, v.Value > 40 && v.Value < 60, "rsi %v", v.Value)
	})

	t.Run("flat window undefined", func(t *testing.T) {
		got := RSI(linear(20, 50, 0), 14)
		assert.False(t, got[19].Valid)
	})
}

func TestMACD(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 100 + 5*math.Sin(float64(i)/3)
	}

	m := MACD(values, 12, 26, 9)

	assert.False(t, m.Line[24].Valid)
	assert.True(t, m.Line[25].Valid)
	assert.False(t, m.Signal[32].Valid)
	assert.True(t, m.Signal[33].Valid)
	assert.False(t, m.Histogram[32].Valid)
	require.True(t, m.Histogram[39].Valid)
	assert.InDelta(t, m.Line[39].Value-m.Signal[39].Value, m.Histogram[39].Value, 1e-12)

	reading := m.At(39)
	assert.Equal(t, m.Histogram[39], reading.Histogram)
	assert.False(t, m.At(99).Line.Valid)
}

func TestBollingerBands(t *testing.T) {
	t.Run("constant series has zero width", func(t *testing.T) {
		b := BollingerBands(linear(25, 42, 0), 20, 2)
		r := b.At(24)
		assert.InDelta(t, 42.0, r.Lower.Value, 1e-12)
		assert.InDelta(t, 42.0, r.Mid.Value, 1e-12)
		assert.InDelta(t, 42.0, r.Upper.Value, 1e-12)
	})

	t.Run("population std", func(t *testing.T) {
		// values 1..4: mean 2.5, population variance 1.25
		b := BollingerBands([]float64{1, 2, 3, 4}, 4, 2)
		r := b.At(3)
		std := math.Sqrt(1.25)
		assert.InDelta(t, 2.5-2*std, r.Lower.Value, 1e-12)
		assert.InDelta(t, 2.5+2*std, r.Upper.Value, 1e-12)
		assert.False(t, b.At(2).Mid.Valid)
	})
}
