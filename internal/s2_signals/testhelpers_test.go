package s2_signals

import (
	"math"
	"time"

	"github.com/wonny/stockrank/internal/contracts"
)

// makeSeries builds a daily series whose close follows f
func makeSeries(ticker string, n int, f func(i int) float64) contracts.Series {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.Bar, n)
	for i := range bars {
		c := f(i)
		bars[i] = contracts.Bar{
			Date:     start.AddDate(0, 0, i),
			Open:     c,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
			Volume:   1_000_000,
			AdjClose: c,
		}
	}
	return contracts.Series{Ticker: ticker, Bars: bars}
}

func wave(i int) float64 {
	return 100 + 10*math.Sin(float64(i)/7) + 0.05*float64(i)
}
