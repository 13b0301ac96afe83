package laps

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

type curveKey struct {
	Compound model.Compound
	LapIndex int
}

// AverageDegradation computes the mean lap time per compound and LapIndex
// across all drivers and stints.
func AverageDegradation(stints []model.StintLap) model.DegradationCurve {
	ret := model.DegradationCurve{}
	if len(stints) == 0 {
		return ret
	}
	indexed := lo.FlatMap(StintGroups(stints), func(g StintGroup, _ int) []IndexedLap {
		return g.Laps
	})
	grouped := lo.GroupBy(indexed, func(l IndexedLap) curveKey {
		return curveKey{Compound: l.Compound, LapIndex: l.LapIndex}
	})
	for key, items := range grouped {
		lapTimes := lo.Map(items, func(l IndexedLap, _ int) float64 { return l.LapTime })
		ret[key.Compound] = append(ret[key.Compound], model.CurvePoint{
			LapIndex: key.LapIndex,
			LapTime:  stat.Mean(lapTimes, nil),
		})
	}
	for _, points := range ret {
		slices.SortFunc(points, func(a, b model.CurvePoint) int {
			return cmp.Compare(a.LapIndex, b.LapIndex)
		})
	}
	return ret
}
