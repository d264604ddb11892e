package quality

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/wonny/stockrank/internal/contracts"
)

// ErrInvalidSeries marks a series that breaks the OHLCV invariants
var ErrInvalidSeries = errors.New("invalid series")

// NormalizeBars sorts bars by date and removes duplicate dates.
// On duplicates the later bar in input order wins.
// Bars without a usable close are dropped.
func NormalizeBars(bars []contracts.Bar) []contracts.Bar {
	byDate := make(map[string]int, len(bars))
	out := make([]contracts.Bar, 0, len(bars))

	for _, b := range bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			continue
		}
		key := b.Date.Format("2006-01-02")
		if i, ok := byDate[key]; ok {
			out[i] = b
			continue
		}
		byDate[key] = len(out)
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// ValidateSeries checks strictly increasing dates, positive closes and high >= low
// ⭐ SSOT: S0 가격 시계열 검증
func ValidateSeries(s contracts.Series) error {
	for i, b := range s.Bars {
		if b.Close <= 0 {
			return fmt.Errorf("%w: %s bar %d: non-positive close %v", ErrInvalidSeries, s.Ticker, i, b.Close)
		}
		if b.High < b.Low {
			return fmt.Errorf("%w: %s bar %d: high %v below low %v", ErrInvalidSeries, s.Ticker, i, b.High, b.Low)
		}
		if i > 0 && !b.Date.After(s.Bars[i-1].Date) {
			return fmt.Errorf("%w: %s bar %d: date %s not after %s", ErrInvalidSeries, s.Ticker, i,
				b.Date.Format("2006-01-02"), s.Bars[i-1].Date.Format("2006-01-02"))
		}
	}
	return nil
}
