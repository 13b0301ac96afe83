//nolint:funlen,lll // ok for tests
package service

import (
	"context"
	"testing"

	"github.com/aarondl/opt/omit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/tyre-strategy/pkg/config"
	"github.com/mpapenbr/tyre-strategy/pkg/insights"
	"github.com/mpapenbr/tyre-strategy/pkg/model"
	"github.com/mpapenbr/tyre-strategy/pkg/provider"
	"github.com/mpapenbr/tyre-strategy/pkg/racestints"
	"github.com/mpapenbr/tyre-strategy/pkg/undercut"
)

var (
	raceKey  = provider.SessionKey{Year: 2024, Event: "Italian Grand Prix", Session: "R"}
	emptyKey = provider.SessionKey{Year: 2024, Event: "Empty Grand Prix", Session: "R"}
)

// two drivers, 10 laps, one stop each on lap 6 with opposite compounds
func sampleLaps() []model.LapRecord {
	ret := make([]model.LapRecord, 0, 20)
	add := func(driver string, first, second model.Compound, base1, base2 float64) {
		for i := range 10 {
			compound, stint, lapTime := first, 1, base1+0.2*float64(i)
			if i >= 5 {
				compound, stint, lapTime = second, 2, base2+0.1*float64(i-5)
			}
			ret = append(ret, model.LapRecord{
				Driver:    driver,
				LapNumber: i + 1,
				Compound:  compound,
				Stint:     stint,
				LapTime:   omit.From(lapTime),
				Sectors:   [3]omit.Val[float64]{omit.From(lapTime / 3), {}, {}},
			})
		}
	}
	add("VER", model.CompoundMedium, model.CompoundHard, 90, 91)
	add("HAM", model.CompoundHard, model.CompoundMedium, 91.5, 90.5)
	return ret
}

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(provider.Static{
		raceKey:  sampleLaps(),
		emptyKey: {},
	})
}

func TestAnalyzerDegradation(t *testing.T) {
	a := newTestAnalyzer()
	got := a.Degradation(context.Background(), raceKey)
	require.True(t, got.IsOK(), got.Reason)
	assert.Len(t, got.Value, 10)
	assert.Equal(t, model.CompoundHard, got.Value[0].Compound)
	assert.Equal(t, 1, got.Value[0].LapIndex)

	empty := a.Degradation(context.Background(), emptyKey)
	assert.True(t, empty.IsEmpty())
}

func TestAnalyzerUnknownSession(t *testing.T) {
	a := newTestAnalyzer()
	got := a.Gap(context.Background(), provider.SessionKey{Year: 2020, Event: "x", Session: "R"})
	require.True(t, got.IsError())
	assert.ErrorIs(t, got.Err, provider.ErrNotAvailable)
}

func TestAnalyzerStrategy(t *testing.T) {
	a := newTestAnalyzer()
	tests := []struct {
		name       string
		key        provider.SessionKey
		params     racestints.Params
		wantStatus model.Status
	}{
		{
			name:       "race distance from session",
			key:        raceKey,
			params:     racestints.Params{PitLoss: 20, CircuitType: model.CircuitLowDeg},
			wantStatus: model.StatusOK,
		},
		{
			name:       "negative pit loss",
			key:        raceKey,
			params:     racestints.Params{TotalLaps: 10, PitLoss: -1},
			wantStatus: model.StatusError,
		},
		{
			name:       "session without laps",
			key:        emptyKey,
			params:     racestints.Params{PitLoss: 20},
			wantStatus: model.StatusEmpty,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Strategy(context.Background(), tt.key, tt.params)
			assert.Equal(t, tt.wantStatus, got.Status, got.Reason)
			if got.IsError() {
				assert.ErrorIs(t, got.Err, model.ErrValidation)
			}
			if got.IsEmpty() {
				assert.Equal(t, reasonNoLaps, got.Reason)
			}
			if got.IsOK() {
				assert.Equal(t, 10, got.Value.Results[0].Laps())
				assert.Contains(t, []string{"MEDIUM → HARD", "HARD → MEDIUM"}, got.Value.Best.Strategy)
			}
		})
	}
}

func TestAnalyzerPitStopsAndDuel(t *testing.T) {
	a := newTestAnalyzer()
	pits := a.PitStops(context.Background(), raceKey)
	require.True(t, pits.IsOK())
	assert.Len(t, pits.Value, 2)

	duel := a.Duel(context.Background(), raceKey,
		DuelParams{Driver: "VER", Rival: "HAM", CandidatePitLap: 4, PitDelta: 20})
	require.True(t, duel.IsOK(), duel.Reason)
	assert.Len(t, duel.Value.DriverCum, 10)
	assert.Len(t, duel.Value.RivalCum, 10)

	missing := a.Duel(context.Background(), raceKey,
		DuelParams{Driver: "VER", Rival: "LEC", CandidatePitLap: 4, PitDelta: 20})
	assert.True(t, missing.IsEmpty())
	assert.Equal(t, "no laps for driver LEC", missing.Reason)
}

func TestAnalyzerPayoff(t *testing.T) {
	a := newTestAnalyzer()
	got := a.Payoff(context.Background(), raceKey, undercut.Params{
		CompoundA: model.CompoundMedium, CompoundB: model.CompoundHard,
		UndercutLap: 3, PitLoss: 20,
	})
	require.True(t, got.IsOK(), got.Reason)
	assert.Equal(t, 5, got.Value.TotalLaps)
	assert.True(t, got.Value.Summary.PitInWindow)

	bad := a.Payoff(context.Background(), raceKey, undercut.Params{
		CompoundA: model.CompoundSoft, CompoundB: model.CompoundHard,
		UndercutLap: 3, PitLoss: 20,
	})
	require.True(t, bad.IsError())
	assert.ErrorIs(t, bad.Err, model.ErrValidation)
}

func TestAnalyzerInsightsEmpty(t *testing.T) {
	a := newTestAnalyzer()
	got := a.Insights(context.Background(), emptyKey)
	require.True(t, got.IsOK())
	assert.Equal(t, []string{insights.NoData}, got.Value)
}

func TestAnalyzerHeuristicsSource(t *testing.T) {
	h := config.DefaultHeuristics()
	h.DefaultTyreLife = 42
	var current *config.Heuristics
	a := NewAnalyzer(provider.Static{}, WithHeuristicsSource(func() *config.Heuristics { return current }))
	assert.Equal(t, config.DefaultHeuristics().DefaultTyreLife, a.Heuristics().DefaultTyreLife)
	current = h
	assert.Equal(t, 42, a.Heuristics().DefaultTyreLife)
}

func TestAnalyzerSectorsAndConsistency(t *testing.T) {
	a := newTestAnalyzer()
	sectors := a.Sectors(context.Background(), raceKey)
	require.True(t, sectors.IsOK())
	assert.Len(t, sectors.Value, 20)
	assert.Equal(t, "S1", sectors.Value[0].Sector)

	stats := a.Consistency(context.Background(), raceKey)
	require.True(t, stats.IsOK())
	assert.Len(t, stats.Value, 4)

	assert.True(t, a.Sectors(context.Background(), emptyKey).IsEmpty())
}
