//nolint:lll,funlen // readability
package racegap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

func lap(driver string, lapNo int, compound model.Compound, lapTime, raceTime float64) model.StintLap {
	return model.StintLap{Driver: driver, LapNumber: lapNo, Compound: compound, LapTime: lapTime, RaceTime: raceTime}
}

func TestComputeGapToLeader(t *testing.T) {
	tests := []struct {
		name    string
		stints  []model.StintLap
		want    []GapRow
		wantErr bool
	}{
		{name: "empty", stints: []model.StintLap{}, want: []GapRow{}},
		{
			name: "two drivers",
			stints: []model.StintLap{
				lap("VER", 1, model.CompoundMedium, 90, 90),
				lap("HAM", 1, model.CompoundMedium, 91, 91),
				lap("VER", 2, model.CompoundMedium, 92, 182),
				lap("HAM", 2, model.CompoundMedium, 90, 181),
			},
			want: []GapRow{
				{Driver: "VER", LapNumber: 1, RaceTime: 90, LeaderTime: 90, GapToLeader: 0},
				{Driver: "HAM", LapNumber: 1, RaceTime: 91, LeaderTime: 90, GapToLeader: 1},
				{Driver: "VER", LapNumber: 2, RaceTime: 182, LeaderTime: 181, GapToLeader: 1},
				{Driver: "HAM", LapNumber: 2, RaceTime: 181, LeaderTime: 181, GapToLeader: 0},
			},
		},
		{
			name:    "missing lap number",
			stints:  []model.StintLap{lap("VER", 0, model.CompoundMedium, 90, 90)},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeGapToLeader(tt.stints)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingColumn)
				assert.ErrorIs(t, err, model.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeGapToLeaderExactlyOneLeader(t *testing.T) {
	stints := []model.StintLap{
		lap("A", 1, model.CompoundSoft, 90, 90),
		lap("B", 1, model.CompoundSoft, 90, 90),
		lap("C", 1, model.CompoundSoft, 92, 92),
	}
	got, err := ComputeGapToLeader(stints)
	require.NoError(t, err)
	for _, r := range got {
		assert.GreaterOrEqual(t, r.GapToLeader, 0.0)
	}
}

func TestDetectPitStops(t *testing.T) {
	stints := []model.StintLap{
		lap("VER", 2, model.CompoundMedium, 90, 180),
		lap("VER", 1, model.CompoundMedium, 90, 90),
		lap("VER", 3, model.CompoundHard, 110, 290),
		lap("HAM", 1, model.CompoundSoft, 90, 90),
		lap("HAM", 2, model.CompoundMedium, 110, 200),
		lap("HAM", 3, model.CompoundHard, 110, 310),
	}
	want := []PitEvent{
		{Driver: "HAM", PitLap: 2, PrevCompound: model.CompoundSoft, NextCompound: model.CompoundMedium},
		{Driver: "HAM", PitLap: 3, PrevCompound: model.CompoundMedium, NextCompound: model.CompoundHard},
		{Driver: "VER", PitLap: 3, PrevCompound: model.CompoundMedium, NextCompound: model.CompoundHard},
	}
	got := DetectPitStops(stints)
	assert.Equal(t, want, got)
	assert.Equal(t, []int{3}, PitLaps(got, "VER"))
	assert.Equal(t, []int{}, PitLaps(got, "LEC"))
}

func TestSimulateUndercutOvertake(t *testing.T) {
	stints := []model.StintLap{
		lap("A", 1, model.CompoundMedium, 90, 90),
		lap("A", 2, model.CompoundMedium, 90, 180),
		// lap 3 missing for A
		lap("A", 4, model.CompoundMedium, 90, 270),
		lap("B", 1, model.CompoundMedium, 91, 91),
		lap("B", 2, model.CompoundMedium, 91, 182),
		lap("B", 3, model.CompoundHard, 91, 273),
		lap("B", 4, model.CompoundHard, 91, 364),
	}
	got := SimulateUndercutOvertake(stints, "A", "B", 2, 20)
	require.True(t, got.IsOK())
	res := got.Value
	assert.Equal(t, []int{3}, res.RivalPitLaps)
	assert.Equal(t, []float64{90, 200, 290, 380}, res.DriverCum)
	assert.Equal(t, []float64{91, 182, 293, 384}, res.RivalCum)
	assert.InDelta(t, -4.0, res.FinalGap, 1e-9)
}

func TestSimulateUndercutOvertakeDefaultRivalPit(t *testing.T) {
	stints := []model.StintLap{
		lap("A", 1, model.CompoundMedium, 90, 90),
		lap("A", 2, model.CompoundMedium, 90, 180),
		lap("A", 3, model.CompoundMedium, 90, 270),
		lap("A", 4, model.CompoundMedium, 90, 360),
		lap("B", 1, model.CompoundMedium, 90, 90),
		lap("B", 2, model.CompoundMedium, 90, 180),
		lap("B", 3, model.CompoundMedium, 90, 270),
		lap("B", 4, model.CompoundMedium, 90, 360),
	}
	got := SimulateUndercutOvertake(stints, "A", "B", 3, 20)
	require.True(t, got.IsOK())
	assert.Equal(t, []int{2}, got.Value.RivalPitLaps)
	assert.InDelta(t, 0.0, got.Value.FinalGap, 1e-9)
}

func TestSimulateUndercutOvertakeEmpty(t *testing.T) {
	got := SimulateUndercutOvertake([]model.StintLap{}, "A", "B", 3, 20)
	assert.True(t, got.IsEmpty())
	assert.Equal(t, "lap data empty", got.Reason)

	got = SimulateUndercutOvertake([]model.StintLap{lap("A", 1, model.CompoundSoft, 90, 90)}, "A", "B", 1, 20)
	assert.True(t, got.IsEmpty())
	assert.Contains(t, got.Reason, "B")
}
