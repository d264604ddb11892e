package s2_signals

import (
	"sort"

	"github.com/wonny/stockrank/internal/contracts"
)

// RankedColumn is the percentile rank of every entry of a closed column.
// It can only be built from a complete batch, so no rank is final before
// the whole universe has been collected.
type RankedColumn struct {
	ranks []contracts.Num
}

// RankColumn ranks each defined value as (count of defined values <= v) / k,
// where k is the number of defined values. Ties share a rank. Undefined
// values stay undefined and are excluded from k.
func RankColumn(values []contracts.Num) RankedColumn {
	defined := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			defined = append(defined, v.Value)
		}
	}
	sort.Float64s(defined)

	ranks := make([]contracts.Num, len(values))
	k := float64(len(defined))
	for i, v := range values {
		if !v.Valid {
			continue
		}
		atOrBelow := sort.Search(len(defined), func(j int) bool { return defined[j] > v.Value })
		ranks[i] = contracts.Some(float64(atOrBelow) / k)
	}

	return RankedColumn{ranks: ranks}
}

// Len returns the column length
func (c RankedColumn) Len() int {
	return len(c.ranks)
}

// At returns the rank at row i
func (c RankedColumn) At(i int) contracts.Num {
	if i < 0 || i >= len(c.ranks) {
		return contracts.None()
	}
	return c.ranks[i]
}

// Score maps the rank at row i through f, or returns def when undefined
func (c RankedColumn) Score(i int, f func(rank float64) float64, def float64) float64 {
	r := c.At(i)
	if !r.Valid {
		return def
	}
	return f(r.Value)
}

func ascending(rank float64) float64  { return rank }
func descending(rank float64) float64 { return 1 - rank }
