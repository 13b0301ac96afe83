package racegap

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

type DuelResult struct {
	Driver          string    `json:"driver"`
	Rival           string    `json:"rival"`
	CandidatePitLap int       `json:"candidate_pit_lap"`
	RivalPitLaps    []int     `json:"rival_pit_laps"`
	FinalGap        float64   `json:"final_gap_s"` // negative: driver finishes ahead
	DriverCum       []float64 `json:"sim_driver_cum"`
	RivalCum        []float64 `json:"sim_rival_cum"`
}

// SimulateUndercutOvertake replays the race for two drivers with the driver
// pitting on candidatePitLap and the rival on the detected pit laps (half
// distance if none was found). Laps without a time are filled with the
// driver's own mean lap time.
func SimulateUndercutOvertake(
	stints []model.StintLap,
	driver, rival string,
	candidatePitLap int,
	pitDelta float64,
) model.Outcome[DuelResult] {
	if len(stints) == 0 {
		return model.Empty[DuelResult]("lap data empty")
	}
	driverLaps := lapTimes(stints, driver)
	rivalLaps := lapTimes(stints, rival)
	if len(driverLaps) == 0 {
		return model.Empty[DuelResult](fmt.Sprintf("no laps for driver %s", driver))
	}
	if len(rivalLaps) == 0 {
		return model.Empty[DuelResult](fmt.Sprintf("no laps for driver %s", rival))
	}
	maxLap := lo.MaxBy(stints, func(a, b model.StintLap) bool {
		return a.LapNumber > b.LapNumber
	}).LapNumber

	rivalPits := PitLaps(DetectPitStops(stints), rival)
	if len(rivalPits) == 0 {
		rivalPits = []int{maxLap / 2}
	}
	driverMean := stat.Mean(lo.Values(driverLaps), nil)
	rivalMean := stat.Mean(lo.Values(rivalLaps), nil)

	ret := DuelResult{
		Driver:          driver,
		Rival:           rival,
		CandidatePitLap: candidatePitLap,
		RivalPitLaps:    rivalPits,
		DriverCum:       make([]float64, 0, maxLap),
		RivalCum:        make([]float64, 0, maxLap),
	}
	dCum, rCum := 0.0, 0.0
	for lap := 1; lap <= maxLap; lap++ {
		dCum += simLapTime(driverLaps, lap, lap == candidatePitLap, pitDelta, driverMean)
		rCum += simLapTime(rivalLaps, lap, slices.Contains(rivalPits, lap), pitDelta, rivalMean)
		ret.DriverCum = append(ret.DriverCum, dCum)
		ret.RivalCum = append(ret.RivalCum, rCum)
	}
	ret.FinalGap = dCum - rCum
	return model.OK(ret)
}

// simLapTime returns the observed time, adds the pit delta on pit laps and
// falls back to the mean for laps without data. A pit lap without data
// counts the pit delta only.
func simLapTime(laps map[int]float64, lap int, pit bool, pitDelta, mean float64) float64 {
	t, ok := laps[lap]
	switch {
	case pit && ok:
		return t + pitDelta
	case pit:
		return pitDelta
	case ok:
		return t
	default:
		return mean
	}
}

func lapTimes(stints []model.StintLap, driver string) map[int]float64 {
	ret := make(map[int]float64)
	for _, s := range stints {
		if s.Driver == driver {
			ret[s.LapNumber] = s.LapTime
		}
	}
	return ret
}
