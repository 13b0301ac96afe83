package insights

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/mpapenbr/tyre-strategy/pkg/config"
	"github.com/mpapenbr/tyre-strategy/pkg/laps"
	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

const (
	NoData         = "No lap/time data available to generate insights."
	Recommendation = "Recommendation: inspect pit lap timing and tyre-change laps; " +
		"use the tyre with the flattest slope for longer stints."
)

type (
	Spike struct {
		Driver    string
		LapNumber int
	}
	Slope struct {
		Compound model.Compound
		Slope    float64 // seconds per lap
	}
)

// LapTimeInsights returns short textual findings about the session.
func LapTimeInsights(stints []model.StintLap, h *config.Heuristics) []string {
	if len(stints) == 0 {
		return []string{NoData}
	}
	if h == nil {
		h = config.DefaultHeuristics()
	}
	ret := make([]string, 0, 4)
	if driver, count := MostStints(stints); count > 0 {
		ret = append(ret, fmt.Sprintf("%s had the highest number of stints (%d).", driver, count))
	}
	if spikes := LapTimeSpikes(stints, h.Insights.SpikeSigma); len(spikes) > 0 {
		sample := lo.Map(spikes[:min(len(spikes), h.Insights.MaxSpikes)], func(s Spike, _ int) string {
			return fmt.Sprintf("%s (spike at lap %d)", s.Driver, s.LapNumber)
		})
		ret = append(ret, fmt.Sprintf(
			"Lap-time spikes detected for: %s. These usually indicate pit-laps or traffic/incidents.",
			strings.Join(sample, ", ")))
	}
	if slopes := DegradationSlopes(laps.AverageDegradation(stints)); len(slopes) > 0 {
		top := lo.Map(slopes[:min(len(slopes), h.Insights.TopCompounds)], func(s Slope, _ int) string {
			return fmt.Sprintf("%s (slope %.4fs/lap)", s.Compound, s.Slope)
		})
		ret = append(ret, fmt.Sprintf(
			"Estimated degradation slope (s per lap): %s. Higher slope = faster wear.",
			strings.Join(top, ", ")))
	}
	return append(ret, Recommendation)
}

// MostStints returns the driver with the most distinct stints. Ties resolve
// to the alphabetically first driver.
func MostStints(stints []model.StintLap) (driver string, count int) {
	perDriver := make(map[string]map[int]struct{})
	for _, s := range stints {
		if perDriver[s.Driver] == nil {
			perDriver[s.Driver] = make(map[int]struct{})
		}
		perDriver[s.Driver][s.Stint] = struct{}{}
	}
	drivers := lo.Keys(perDriver)
	slices.Sort(drivers)
	for _, d := range drivers {
		if n := len(perDriver[d]); n > count {
			driver, count = d, n
		}
	}
	return driver, count
}

// LapTimeSpikes flags drivers whose absolute lap-to-lap change exceeds
// mean + sigma*sd of their own changes. The lap of the largest change is
// reported. Drivers are ordered by name.
func LapTimeSpikes(stints []model.StintLap, sigma float64) []Spike {
	byDriver := lo.GroupBy(stints, func(s model.StintLap) string { return s.Driver })
	drivers := lo.Keys(byDriver)
	slices.Sort(drivers)

	ret := make([]Spike, 0)
	for _, d := range drivers {
		work := slices.Clone(byDriver[d])
		slices.SortStableFunc(work, func(a, b model.StintLap) int {
			return cmp.Compare(a.LapNumber, b.LapNumber)
		})
		diffs := make([]float64, len(work))
		for i := 1; i < len(work); i++ {
			diffs[i] = math.Abs(work[i].LapTime - work[i-1].LapTime)
		}
		mean, std := stat.MeanStdDev(diffs, nil)
		limit := mean + sigma*std
		if math.IsNaN(limit) {
			continue
		}
		idx := floats.MaxIdx(diffs)
		if diffs[idx] > limit {
			ret = append(ret, Spike{Driver: d, LapNumber: work[idx].LapNumber})
		}
	}
	return ret
}

// DegradationSlopes fits a line through the mean lap times over LapIndex per
// compound. Compounds with fewer than two points are skipped. The result is
// ordered by slope, steepest first.
func DegradationSlopes(curve model.DegradationCurve) []Slope {
	ret := make([]Slope, 0)
	for _, c := range curve.Compounds() {
		points := curve[c]
		if len(points) < 2 {
			continue
		}
		xs := lo.Map(points, func(p model.CurvePoint, _ int) float64 { return float64(p.LapIndex) })
		_, beta := stat.LinearRegression(xs, curve.LapTimes(c), nil, false)
		ret = append(ret, Slope{Compound: c, Slope: beta})
	}
	slices.SortStableFunc(ret, func(a, b Slope) int {
		return cmp.Compare(b.Slope, a.Slope)
	})
	return ret
}
