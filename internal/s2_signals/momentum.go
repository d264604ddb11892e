package s2_signals

import "github.com/wonny/stockrank/internal/contracts"

const (
	DefaultSwingWindow = 5
	DefaultSwingCount  = 4
)

// ScoreMomentum scores trend structure from recent swing points.
//
// Higher highs and higher lows count as bullish, lower highs and lower lows
// as bearish, and the net count is scaled by 2*nSwings. The score is 0 unless
// at least one of the two swing sequences has nSwings+1 points; a sequence
// shorter than that contributes nothing.
func ScoreMomentum(highs, lows []float64, window, nSwings int) float64 {
	if nSwings <= 0 {
		return 0.0
	}
	swings := DetectSwings(highs, lows, window)
	return scoreSwings(swings, nSwings)
}

func scoreSwings(swings contracts.SwingSet, nSwings int) float64 {
	need := nSwings + 1
	if len(swings.Highs) < need && len(swings.Lows) < need {
		return 0.0
	}

	higherHigh, lowerHigh := countSteps(swings.Highs, need)
	higherLow, lowerLow := countSteps(swings.Lows, need)

	net := float64((higherHigh + higherLow) - (lowerLow + lowerHigh))
	maxNet := float64(2 * nSwings)

	return clamp(net/maxNet, -1.0, 1.0)
}

// countSteps compares consecutive pairs among the last need points.
// Equal values count as neither up nor down.
func countSteps(points []contracts.SwingPoint, need int) (up, down int) {
	if len(points) < need {
		return 0, 0
	}
	recent := points[len(points)-need:]
	for i := 1; i < len(recent); i++ {
		switch {
		case recent[i].Value > recent[i-1].Value:
			up++
		case recent[i].Value < recent[i-1].Value:
			down++
		}
	}
	return up, down
}
