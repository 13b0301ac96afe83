package racestints

import (
	"slices"

	"github.com/mpapenbr/tyre-strategy/pkg/config"
	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

// EstimateTyreLife returns per compound the first LapIndex whose mean lap time
// exceeds the first lap by the degradation threshold. Compounds that never
// cross the threshold get their highest observed LapIndex.
func EstimateTyreLife(curve model.DegradationCurve, h *config.Heuristics) TyreLife {
	h = orDefault(h)
	ret := TyreLife{}
	for _, c := range curve.Compounds() {
		points := curve[c]
		threshold := points[0].LapTime * h.DegradationThreshold
		life := points[len(points)-1].LapIndex
		for _, p := range points {
			if p.LapTime > threshold {
				life = p.LapIndex
				break
			}
		}
		ret[c] = max(1, life)
	}
	return ret
}

// CandidatePitLaps returns the multiples of every tyre life below totalLaps,
// sorted and without duplicates.
func CandidatePitLaps(totalLaps int, tyreLife TyreLife) []int {
	seen := make(map[int]struct{})
	for _, life := range tyreLife {
		step := max(1, life)
		for lap := step; lap < totalLaps; lap += step {
			seen[lap] = struct{}{}
		}
	}
	ret := make([]int, 0, len(seen))
	for lap := range seen {
		ret = append(ret, lap)
	}
	slices.Sort(ret)
	return ret
}

func orDefault(h *config.Heuristics) *config.Heuristics {
	if h == nil {
		return config.DefaultHeuristics()
	}
	return h
}
