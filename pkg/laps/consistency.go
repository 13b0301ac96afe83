package laps

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

type StintStats struct {
	Driver  string  `json:"Driver"`
	Stint   int     `json:"Stint"`
	MeanLap float64 `json:"mean_lap_s"`
	StdLap  float64 `json:"std_lap_s"` // sample standard deviation, 0 for single lap stints
	Laps    int     `json:"laps_in_stint"`
}

type driverStint struct {
	Driver string
	Stint  int
}

// StintConsistency computes mean, standard deviation and lap count per
// driver and stint.
func StintConsistency(stints []model.StintLap) []StintStats {
	grouped := lo.GroupBy(stints, func(l model.StintLap) driverStint {
		return driverStint{Driver: l.Driver, Stint: l.Stint}
	})
	ret := make([]StintStats, 0, len(grouped))
	for key, items := range grouped {
		lapTimes := lo.Map(items, func(l model.StintLap, _ int) float64 { return l.LapTime })
		mean, std := stat.MeanStdDev(lapTimes, nil)
		if math.IsNaN(std) {
			std = 0
		}
		ret = append(ret, StintStats{
			Driver:  key.Driver,
			Stint:   key.Stint,
			MeanLap: mean,
			StdLap:  std,
			Laps:    len(items),
		})
	}
	slices.SortFunc(ret, func(a, b StintStats) int {
		return cmp.Or(strings.Compare(a.Driver, b.Driver), cmp.Compare(a.Stint, b.Stint))
	})
	return ret
}
