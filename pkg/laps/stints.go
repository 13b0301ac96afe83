package laps

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

type (
	stintKey struct {
		Driver   string
		Compound model.Compound
		Stint    int
	}
	// IndexedLap is a lap with its position within the stint (1..N)
	IndexedLap struct {
		model.StintLap
		LapIndex int
	}
	// StintGroup holds the laps of one driver on one set of tyres.
	StintGroup struct {
		Driver   string
		Compound model.Compound
		Stint    int
		Laps     []IndexedLap
	}
)

// ComputeStintData drops laps without a lap time and computes the cumulative
// race time per driver in lap number order. The result is ordered by lap
// number and driver.
func ComputeStintData(laps []model.LapRecord) []model.StintLap {
	valid := lo.Filter(laps, func(l model.LapRecord, _ int) bool {
		v, ok := l.LapTime.Get()
		return ok && !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
	})
	if len(valid) == 0 {
		return []model.StintLap{}
	}
	slices.SortStableFunc(valid, func(a, b model.LapRecord) int {
		return cmp.Or(
			strings.Compare(a.Driver, b.Driver),
			cmp.Compare(a.LapNumber, b.LapNumber))
	})

	raceTime := make(map[string]float64)
	ret := make([]model.StintLap, 0, len(valid))
	for i := range valid {
		l := &valid[i]
		lapTime := l.LapTime.GetOr(0)
		raceTime[l.Driver] += lapTime
		ret = append(ret, model.StintLap{
			Driver:    l.Driver,
			LapNumber: l.LapNumber,
			Compound:  l.Compound,
			Stint:     l.Stint,
			LapTime:   lapTime,
			RaceTime:  raceTime[l.Driver],
			Position:  l.Position,
		})
	}
	slices.SortStableFunc(ret, func(a, b model.StintLap) int {
		return cmp.Or(
			cmp.Compare(a.LapNumber, b.LapNumber),
			strings.Compare(a.Driver, b.Driver))
	})
	return ret
}

// StintGroups groups the laps by (Driver, Compound, Stint) and assigns the
// LapIndex in lap number order.
func StintGroups(stints []model.StintLap) []StintGroup {
	grouped := lo.GroupBy(stints, func(l model.StintLap) stintKey {
		return stintKey{Driver: l.Driver, Compound: l.Compound, Stint: l.Stint}
	})
	ret := make([]StintGroup, 0, len(grouped))
	for key, items := range grouped {
		sorted := slices.Clone(items)
		slices.SortStableFunc(sorted, func(a, b model.StintLap) int {
			return cmp.Compare(a.LapNumber, b.LapNumber)
		})
		ret = append(ret, StintGroup{
			Driver:   key.Driver,
			Compound: key.Compound,
			Stint:    key.Stint,
			Laps: lo.Map(sorted, func(l model.StintLap, idx int) IndexedLap {
				return IndexedLap{StintLap: l, LapIndex: idx + 1}
			}),
		})
	}
	slices.SortFunc(ret, func(a, b StintGroup) int {
		return cmp.Or(
			strings.Compare(a.Driver, b.Driver),
			cmp.Compare(a.Stint, b.Stint),
			strings.Compare(string(a.Compound), string(b.Compound)))
	})
	return ret
}
