package s2_signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreMomentum(t *testing.T) {
	upHighs := []float64{1, 3, 1, 4, 1, 5, 1, 6, 1}
	upLows := []float64{0, 2, 1, 3, 2, 4, 3, 5, 4}

	negate := func(values []float64) []float64 {
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = -v
		}
		return out
	}

	tests := []struct {
		name    string
		highs   []float64
		lows    []float64
		window  int
		nSwings int
		want    float64
	}{
		{
			name:    "higher highs and higher lows",
			highs:   upHighs,
			lows:    upLows,
			window:  1,
			nSwings: 2,
			want:    1.0,
		},
		{
			// negated lows become highs and vice versa
			name:    "lower highs and lower lows",
			highs:   negate(upLows),
			lows:    negate(upHighs),
			window:  1,
			nSwings: 2,
			want:    -1.0,
		},
		{
			// swing lows are flat 0,0 and too few to contribute
			name:    "only highs sequence long enough",
			highs:   []float64{1, 3, 1, 4, 1, 5, 1},
			lows:    []float64{0, 2, 0, 3, 0, 4, 0},
			window:  1,
			nSwings: 2,
			want:    0.5,
		},
		{
			name:    "not enough swings",
			highs:   upHighs,
			lows:    upLows,
			window:  1,
			nSwings: 4,
			want:    0.0,
		},
		{
			name:    "short series",
			highs:   []float64{1, 2, 3},
			lows:    []float64{0, 1, 2},
			window:  5,
			nSwings: 4,
			want:    0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreMomentum(tt.highs, tt.lows, tt.window, tt.nSwings)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}
