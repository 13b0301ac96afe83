package racegap

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

// ErrMissingColumn is returned when a row lacks the lap number or race time.
var ErrMissingColumn = fmt.Errorf("%w: missing column", model.ErrValidation)

type (
	GapRow struct {
		Driver      string  `json:"Driver"`
		LapNumber   int     `json:"LapNumber"`
		RaceTime    float64 `json:"RaceTime_s"`
		LeaderTime  float64 `json:"LeaderTime_s"`
		GapToLeader float64 `json:"GapToLeader_s"`
	}
	PitEvent struct {
		Driver       string         `json:"Driver"`
		PitLap       int            `json:"pit_lap"`
		PrevCompound model.Compound `json:"prev_compound"`
		NextCompound model.Compound `json:"next_compound"`
	}
)

// ComputeGapToLeader computes the gap of every driver to the car with the
// lowest race time on the same lap. Rows are ordered by lap number, drivers
// keep their input order within a lap.
func ComputeGapToLeader(stints []model.StintLap) ([]GapRow, error) {
	leader := make(map[int]float64)
	for i := range stints {
		s := &stints[i]
		if s.LapNumber <= 0 {
			return nil, fmt.Errorf("%w: LapNumber (driver %s, row %d)", ErrMissingColumn, s.Driver, i)
		}
		if math.IsNaN(s.RaceTime) || math.IsInf(s.RaceTime, 0) {
			return nil, fmt.Errorf("%w: RaceTime_s (driver %s, lap %d)", ErrMissingColumn, s.Driver, s.LapNumber)
		}
		if cur, ok := leader[s.LapNumber]; !ok || s.RaceTime < cur {
			leader[s.LapNumber] = s.RaceTime
		}
	}
	ret := make([]GapRow, 0, len(stints))
	for i := range stints {
		s := &stints[i]
		lt := leader[s.LapNumber]
		ret = append(ret, GapRow{
			Driver:      s.Driver,
			LapNumber:   s.LapNumber,
			RaceTime:    s.RaceTime,
			LeaderTime:  lt,
			GapToLeader: s.RaceTime - lt,
		})
	}
	slices.SortStableFunc(ret, func(a, b GapRow) int {
		return cmp.Compare(a.LapNumber, b.LapNumber)
	})
	return ret, nil
}

// DetectPitStops reports a pit stop whenever a driver's compound differs from
// the one of the previous lap. The stop is attributed to the lap on which the
// new compound shows up.
func DetectPitStops(stints []model.StintLap) []PitEvent {
	byDriver := make(map[string][]model.StintLap)
	drivers := make([]string, 0)
	for _, s := range stints {
		if _, ok := byDriver[s.Driver]; !ok {
			drivers = append(drivers, s.Driver)
		}
		byDriver[s.Driver] = append(byDriver[s.Driver], s)
	}
	slices.Sort(drivers)

	ret := make([]PitEvent, 0)
	for _, d := range drivers {
		work := byDriver[d]
		slices.SortStableFunc(work, func(a, b model.StintLap) int {
			return cmp.Compare(a.LapNumber, b.LapNumber)
		})
		for i := 1; i < len(work); i++ {
			if work[i].Compound != work[i-1].Compound {
				ret = append(ret, PitEvent{
					Driver:       d,
					PitLap:       work[i].LapNumber,
					PrevCompound: work[i-1].Compound,
					NextCompound: work[i].Compound,
				})
			}
		}
	}
	return ret
}

// PitLaps returns the pit laps of one driver.
func PitLaps(events []PitEvent, driver string) []int {
	ret := make([]int, 0)
	for _, e := range events {
		if e.Driver == driver {
			ret = append(ret, e.PitLap)
		}
	}
	return ret
}
