//nolint:lll,funlen // readability
package laps

import (
	"testing"

	"github.com/aarondl/opt/omit"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

func rec(driver string, lapNo int, compound model.Compound, stint int, lapTime float64) model.LapRecord {
	return model.LapRecord{Driver: driver, LapNumber: lapNo, Compound: compound, Stint: stint, LapTime: omit.From(lapTime)}
}

func recNoTime(driver string, lapNo int, compound model.Compound, stint int) model.LapRecord {
	return model.LapRecord{Driver: driver, LapNumber: lapNo, Compound: compound, Stint: stint}
}

func sampleLaps() []model.LapRecord {
	return []model.LapRecord{
		rec("VER", 2, model.CompoundMedium, 1, 91),
		rec("VER", 1, model.CompoundMedium, 1, 90),
		recNoTime("VER", 3, model.CompoundMedium, 1),
		rec("VER", 4, model.CompoundHard, 2, 95),
		rec("VER", 5, model.CompoundHard, 2, 93),
		rec("HAM", 1, model.CompoundMedium, 1, 92),
		rec("HAM", 2, model.CompoundMedium, 1, 93),
		rec("HAM", 3, model.CompoundMedium, 1, 94),
	}
}

func TestComputeStintData(t *testing.T) {
	got := ComputeStintData(sampleLaps())
	want := []model.StintLap{
		{Driver: "HAM", LapNumber: 1, Compound: model.CompoundMedium, Stint: 1, LapTime: 92, RaceTime: 92},
		{Driver: "VER", LapNumber: 1, Compound: model.CompoundMedium, Stint: 1, LapTime: 90, RaceTime: 90},
		{Driver: "HAM", LapNumber: 2, Compound: model.CompoundMedium, Stint: 1, LapTime: 93, RaceTime: 185},
		{Driver: "VER", LapNumber: 2, Compound: model.CompoundMedium, Stint: 1, LapTime: 91, RaceTime: 181},
		{Driver: "HAM", LapNumber: 3, Compound: model.CompoundMedium, Stint: 1, LapTime: 94, RaceTime: 279},
		{Driver: "VER", LapNumber: 4, Compound: model.CompoundHard, Stint: 2, LapTime: 95, RaceTime: 276},
		{Driver: "VER", LapNumber: 5, Compound: model.CompoundHard, Stint: 2, LapTime: 93, RaceTime: 369},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateComparable(omit.Val[int]{})); diff != "" {
		t.Errorf("ComputeStintData() mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeStintDataRaceTimeIsRunningSum(t *testing.T) {
	got := ComputeStintData(sampleLaps())
	sums := map[string]float64{}
	last := map[string]int{}
	for _, s := range got {
		assert.Greater(t, s.LapNumber, last[s.Driver])
		last[s.Driver] = s.LapNumber
		sums[s.Driver] += s.LapTime
		assert.InDelta(t, sums[s.Driver], s.RaceTime, 1e-9)
	}
}

func TestEmptyInput(t *testing.T) {
	assert.Empty(t, ComputeStintData(nil))
	assert.NotNil(t, ComputeStintData(nil))
	assert.True(t, AverageDegradation(nil).IsEmpty())
	assert.Empty(t, StintConsistency(nil))
	assert.Empty(t, SectorAnalysis(nil))
}

func TestStintGroupsLapIndexContiguous(t *testing.T) {
	groups := StintGroups(ComputeStintData(sampleLaps()))
	assert.Len(t, groups, 3)
	for _, g := range groups {
		for i, l := range g.Laps {
			assert.Equal(t, i+1, l.LapIndex)
		}
	}
	assert.Equal(t, "HAM", groups[0].Driver)
	assert.Equal(t, model.CompoundHard, groups[2].Compound)
}

func TestAverageDegradation(t *testing.T) {
	got := AverageDegradation(ComputeStintData(sampleLaps()))
	want := model.DegradationCurve{
		model.CompoundMedium: {{LapIndex: 1, LapTime: 91}, {LapIndex: 2, LapTime: 92}, {LapIndex: 3, LapTime: 94}},
		model.CompoundHard:   {{LapIndex: 1, LapTime: 95}, {LapIndex: 2, LapTime: 93}},
	}
	assert.Equal(t, want, got)
}

func TestStintConsistency(t *testing.T) {
	stints := ComputeStintData(append(sampleLaps(), rec("LEC", 1, model.CompoundSoft, 1, 89)))
	got := StintConsistency(stints)
	assert.Len(t, got, 4)
	assert.Equal(t, "HAM", got[0].Driver)
	assert.Equal(t, 3, got[0].Laps)
	assert.InDelta(t, 93.0, got[0].MeanLap, 1e-9)
	assert.InDelta(t, 1.0, got[0].StdLap, 1e-9)
	assert.Equal(t, StintStats{Driver: "LEC", Stint: 1, MeanLap: 89, StdLap: 0, Laps: 1}, got[1])
	assert.Equal(t, "VER", got[2].Driver)
	assert.InDelta(t, 0.7071, got[2].StdLap, 1e-4)
}

func TestSectorAnalysis(t *testing.T) {
	laps := []model.LapRecord{
		{Driver: "VER", LapNumber: 1, Sectors: [3]omit.Val[float64]{omit.From(30.1), omit.From(31.2), omit.From(29.3)}},
		{Driver: "VER", LapNumber: 2, Sectors: [3]omit.Val[float64]{omit.From(30.4), {}, omit.From(29.5)}},
		{Driver: "HAM", LapNumber: 1},
	}
	want := []SectorTime{
		{Driver: "VER", LapNumber: 1, Sector: "S1", Time: 30.1},
		{Driver: "VER", LapNumber: 1, Sector: "S2", Time: 31.2},
		{Driver: "VER", LapNumber: 1, Sector: "S3", Time: 29.3},
		{Driver: "VER", LapNumber: 2, Sector: "S1", Time: 30.4},
		{Driver: "VER", LapNumber: 2, Sector: "S3", Time: 29.5},
	}
	assert.Equal(t, want, SectorAnalysis(laps))
}

func TestStretch(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		n      int
		want   []float64
	}{
		{"empty", []float64{}, 3, []float64{}},
		{"zero", []float64{1, 2}, 0, []float64{}},
		{"truncate", []float64{1, 2, 3, 4}, 2, []float64{1, 2}},
		{"same length", []float64{1, 2, 3}, 3, []float64{1, 2, 3}},
		{"single point flat", []float64{90}, 4, []float64{90, 90, 90, 90}},
		{"interpolate", []float64{90, 92}, 5, []float64{90, 90.5, 91, 91.5, 92}},
		{"interpolate knots", []float64{90, 91, 95}, 5, []float64{90, 90.5, 91, 93, 95}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Stretch(tt.values, tt.n)
			assert.InDeltaSlice(t, tt.want, got, 1e-9)
			assert.Len(t, got, len(tt.want))
		})
	}
}

func TestRamp(t *testing.T) {
	assert.Equal(t, []float64{}, Ramp(90, 95, 0))
	assert.Equal(t, []float64{90}, Ramp(90, 95, 1))
	assert.InDeltaSlice(t, []float64{90, 92.5, 95}, Ramp(90, 95, 3), 1e-9)
}
