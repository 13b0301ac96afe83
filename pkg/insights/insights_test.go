//nolint:lll // readability
package insights

import (
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

func stintLaps(driver string, compound model.Compound, stint, firstLap int, times ...float64) []model.StintLap {
	ret := make([]model.StintLap, 0, len(times))
	for i, lt := range times {
		ret = append(ret, model.StintLap{Driver: driver, Compound: compound, Stint: stint, LapNumber: firstLap + i, LapTime: lt})
	}
	return ret
}

func session() []model.StintLap {
	ret := stintLaps("VER", model.CompoundMedium, 1, 1, 90, 90.1, 90.2, 90.3, 90.4, 90.5, 90.6, 90.7, 90.8, 90.9)
	ret = append(ret, stintLaps("VER", model.CompoundHard, 2, 11, 110, 91, 91.1, 91.2, 91.3)...)
	ret = append(ret, stintLaps("HAM", model.CompoundMedium, 1, 1, 91, 91.2, 91.4)...)
	ret = append(ret, stintLaps("HAM", model.CompoundHard, 2, 4, 92, 92.1)...)
	ret = append(ret, stintLaps("HAM", model.CompoundSoft, 3, 6, 91.5, 91.6)...)
	return ret
}

func TestLapTimeInsightsEmpty(t *testing.T) {
	assert.DeepEqual(t, []string{NoData}, LapTimeInsights(nil, nil))
}

func TestLapTimeInsights(t *testing.T) {
	got := LapTimeInsights(session(), nil)
	assert.Equal(t, len(got), 4)
	assert.Equal(t, got[0], "HAM had the highest number of stints (3).")
	assert.Check(t, is.Contains(got[1], "VER (spike at lap 11)"))
	assert.Check(t, is.Contains(got[2], "SOFT (slope 0.1000s/lap)"))
	assert.Equal(t, got[3], Recommendation)
}

func TestMostStintsTie(t *testing.T) {
	stints := append(stintLaps("ZHO", model.CompoundSoft, 1, 1, 90), stintLaps("ALB", model.CompoundSoft, 1, 1, 90)...)
	driver, count := MostStints(stints)
	assert.Equal(t, driver, "ALB")
	assert.Equal(t, count, 1)
}

func TestLapTimeSpikes(t *testing.T) {
	tests := []struct {
		name   string
		stints []model.StintLap
		want   []Spike
	}{
		{"single lap", stintLaps("VER", model.CompoundSoft, 1, 1, 90), []Spike{}},
		{"constant", stintLaps("VER", model.CompoundSoft, 1, 1, 90, 90, 90, 90), []Spike{}},
		{"pit lap", session(), []Spike{{Driver: "VER", LapNumber: 11}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.DeepEqual(t, tt.want, LapTimeSpikes(tt.stints, 2))
		})
	}
}

func TestDegradationSlopes(t *testing.T) {
	curve := model.DegradationCurve{
		model.CompoundSoft:   {{LapIndex: 1, LapTime: 80}, {LapIndex: 2, LapTime: 81}, {LapIndex: 3, LapTime: 82}},
		model.CompoundHard:   {{LapIndex: 1, LapTime: 90}, {LapIndex: 2, LapTime: 90.2}},
		model.CompoundMedium: {{LapIndex: 1, LapTime: 85}},
	}
	got := DegradationSlopes(curve)
	assert.Equal(t, len(got), 2)
	assert.Equal(t, got[0].Compound, model.CompoundSoft)
	assert.Assert(t, got[0].Slope > 0.99 && got[0].Slope < 1.01)
	assert.Equal(t, got[1].Compound, model.CompoundHard)
}
