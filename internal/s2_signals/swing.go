package s2_signals

import "github.com/wonny/stockrank/internal/contracts"

// DetectSwings finds swing highs and swing lows.
//
// Index i in [window, n-window) is a swing high when highs[i] equals the
// maximum of highs[i-window..i+window] (inclusive), and a swing low when
// lows[i] equals the minimum of lows over the same range. Equal extrema in
// one window all count, so flat segments produce adjacent swings. Bars
// within window of either end are never swings.
func DetectSwings(highs, lows []float64, window int) contracts.SwingSet {
	set := contracts.SwingSet{
		Highs: []contracts.SwingPoint{},
		Lows:  []contracts.SwingPoint{},
	}
	if window < 0 {
		return set
	}

	for i := window; i < len(highs)-window; i++ {
		if highs[i] == windowMax(highs[i-window:i+window+1]) {
			set.Highs = append(set.Highs, contracts.SwingPoint{Position: i, Value: highs[i]})
		}
	}

	for i := window; i < len(lows)-window; i++ {
		if lows[i] == windowMin(lows[i-window:i+window+1]) {
			set.Lows = append(set.Lows, contracts.SwingPoint{Position: i, Value: lows[i]})
		}
	}

	return set
}

func windowMax(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func windowMin(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
