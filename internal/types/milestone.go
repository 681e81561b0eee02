package types

// MilestoneLadder is the fixed set of market-cap multipliers a token can
// achieve, ascending. A token that reaches the top rung is fully graduated and
// is skipped by further milestone checks.
var MilestoneLadder = []float64{2, 3, 5, 10, 25, 50, 100}

func TopOfLadder() float64 {
	return MilestoneLadder[len(MilestoneLadder)-1]
}

// NewlyAchieved returns the ladder rungs that are covered by multiplier and not
// already present in achieved, in ascending order. Rungs outside the fixed
// ladder never appear in the result.
func NewlyAchieved(achieved []float64, multiplier float64) []float64 {
	have := make(map[float64]struct{}, len(achieved))
	for _, m := range achieved {
		have[m] = struct{}{}
	}

	var newRungs []float64
	for _, rung := range MilestoneLadder {
		if rung > multiplier {
			break
		}
		if _, ok := have[rung]; ok {
			continue
		}
		newRungs = append(newRungs, rung)
	}
	return newRungs
}

// HasGraduated reports whether the achieved set already contains the top rung.
func HasGraduated(achieved []float64) bool {
	for _, m := range achieved {
		if m == TopOfLadder() {
			return true
		}
	}
	return false
}
