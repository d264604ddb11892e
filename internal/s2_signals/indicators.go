package s2_signals

import (
	"math"

	"github.com/wonny/stockrank/internal/contracts"
)

// Indicator series are aligned with the input: out[i] is the reading at bar i.
// Bars without enough history are contracts.None().

// SMA calculates the simple moving average
func SMA(values []float64, period int) []contracts.Num {
	out := make([]contracts.Num, len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = contracts.NumFromFloat(sum / float64(period))
		}
	}
	return out
}

// EMA calculates the exponential moving average.
// The first reading (index period-1) is the SMA of the first period values.
func EMA(values []float64, period int) []contracts.Num {
	out := make([]contracts.Num, len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	var seed float64
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	ema := seed / float64(period)
	out[period-1] = contracts.NumFromFloat(ema)

	alpha := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(values); i++ {
		ema = alpha*values[i] + (1-alpha)*ema
		out[i] = contracts.NumFromFloat(ema)
	}
	return out
}

// emaOfDefined applies EMA to the defined tail of a series
func emaOfDefined(values []contracts.Num, period int) []contracts.Num {
	out := make([]contracts.Num, len(values))

	start := -1
	for i, v := range values {
		if v.Valid {
			start = i
			break
		}
	}
	if start < 0 {
		return out
	}

	tail := make([]float64, 0, len(values)-start)
	for _, v := range values[start:] {
		if !v.Valid {
			break
		}
		tail = append(tail, v.Value)
	}

	copy(out[start:], EMA(tail, period))
	return out
}

// RSI calculates the Relative Strength Index with Wilder smoothing.
// Averages are seeded with the mean gain/loss of the first period changes,
// so the first reading is at index period. A window with neither gains nor
// losses has no defined RSI.
func RSI(values []float64, period int) []contracts.Num {
	out := make([]contracts.Num, len(values))
	if period <= 0 || len(values) <= period {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := splitChange(values[i] - values[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiFromAverages(avgGain, avgLoss)

	n := float64(period)
	for i := period + 1; i < len(values); i++ {
		gain, loss := splitChange(values[i] - values[i-1])
		avgGain = (avgGain*(n-1) + gain) / n
		avgLoss = (avgLoss*(n-1) + loss) / n
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func rsiFromAverages(avgGain, avgLoss float64) contracts.Num {
	total := avgGain + avgLoss
	if total == 0 {
		return contracts.None()
	}
	return contracts.NumFromFloat(100 * avgGain / total)
}

// MACDSeries holds the MACD line, signal line and histogram
type MACDSeries struct {
	Line      []contracts.Num
	Signal    []contracts.Num
	Histogram []contracts.Num
}

// At returns the reading at bar i
func (m MACDSeries) At(i int) contracts.MACDReading {
	if i < 0 || i >= len(m.Line) {
		return contracts.MACDReading{}
	}
	return contracts.MACDReading{Line: m.Line[i], Signal: m.Signal[i], Histogram: m.Histogram[i]}
}

// MACD calculates MACD(fast, slow, signal).
// The signal line is the EMA of the defined MACD line values.
func MACD(values []float64, fast, slow, signal int) MACDSeries {
	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)

	line := make([]contracts.Num, len(values))
	for i := range values {
		if fastEMA[i].Valid && slowEMA[i].Valid {
			line[i] = contracts.NumFromFloat(fastEMA[i].Value - slowEMA[i].Value)
		}
	}

	sig := emaOfDefined(line, signal)

	hist := make([]contracts.Num, len(values))
	for i := range values {
		if line[i].Valid && sig[i].Valid {
			hist[i] = contracts.NumFromFloat(line[i].Value - sig[i].Value)
		}
	}

	return MACDSeries{Line: line, Signal: sig, Histogram: hist}
}

// BandsSeries holds Bollinger Bands
type BandsSeries struct {
	Lower []contracts.Num
	Mid   []contracts.Num
	Upper []contracts.Num
}

// At returns the reading at bar i
func (b BandsSeries) At(i int) contracts.BandsReading {
	if i < 0 || i >= len(b.Mid) {
		return contracts.BandsReading{}
	}
	return contracts.BandsReading{Lower: b.Lower[i], Mid: b.Mid[i], Upper: b.Upper[i]}
}

// BollingerBands calculates mid ± k population standard deviations
func BollingerBands(values []float64, period int, k float64) BandsSeries {
	mid := SMA(values, period)
	lower := make([]contracts.Num, len(values))
	upper := make([]contracts.Num, len(values))

	for i := range values {
		if !mid[i].Valid {
			continue
		}
		var ss float64
		for _, v := range values[i-period+1 : i+1] {
			d := v - mid[i].Value
			ss += d * d
		}
		std := math.Sqrt(ss / float64(period))
		lower[i] = contracts.NumFromFloat(mid[i].Value - k*std)
		upper[i] = contracts.NumFromFloat(mid[i].Value + k*std)
	}

	return BandsSeries{Lower: lower, Mid: mid, Upper: upper}
}

// lastNum returns the last element of a series, or None when empty
func lastNum(series []contracts.Num) contracts.Num {
	if len(series) == 0 {
		return contracts.None()
	}
	return series[len(series)-1]
}
