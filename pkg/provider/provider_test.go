//nolint:lll,funlen // readability
package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

var (
	monza   = SessionKey{Year: 2024, Event: "Italian Grand Prix", Session: "R"}
	bahrain = SessionKey{Year: 2024, Event: "Bahrain Grand Prix", Session: "R"}
)

func TestSessionKeySlug(t *testing.T) {
	assert.Equal(t, "2024_italian_grand_prix_r", monza.Slug())
	assert.Equal(t, "2023_s_o_paulo_fp1", SessionKey{Year: 2023, Event: " São Paulo ", Session: "FP1"}.Slug())
	assert.ErrorIs(t, SessionKey{Event: "x", Session: "R"}.Validate(), model.ErrValidation)
}

func TestReadCSV(t *testing.T) {
	got, err := ReadFile("testdata/2024_italian_grand_prix_r.csv", JSONOptions{})
	require.NoError(t, err)
	require.Len(t, got, 5)

	assert.Equal(t, "VER", got[0].Driver)
	assert.Equal(t, model.CompoundMedium, got[0].Compound)
	assert.InDelta(t, 87.5, got[0].LapTime.GetOrZero(), 1e-9)
	assert.True(t, got[0].PitInTime.IsUnset())
	assert.True(t, got[0].Sectors[0].IsUnset())
	assert.InDelta(t, 28.1, got[0].Sectors[1].GetOrZero(), 1e-9)
	assert.Equal(t, omit.From(1), got[0].Position)

	assert.True(t, got[2].LapTime.IsUnset())
	assert.InDelta(t, 4200, got[2].PitInTime.GetOrZero(), 1e-9)
	assert.Equal(t, 2, got[2].Stint)

	assert.InDelta(t, 88.0, got[3].LapTime.GetOrZero(), 1e-9)
	assert.InDelta(t, 86.5, got[4].LapTime.GetOrZero(), 1e-9)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing column", "Driver,LapNumber,Compound,Stint\nVER,1,SOFT,1\n"},
		{"bad duration", "Driver,LapNumber,Compound,Stint,LapTime\nVER,1,SOFT,1,fast\n"},
		{"missing lap number", "Driver,LapNumber,Compound,Stint,LapTime\nVER,,SOFT,1,90\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.data))
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
	got, err := ReadCSV(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadJSON(t *testing.T) {
	f, err := os.Open("testdata/2024_bahrain_grand_prix_r.json")
	require.NoError(t, err)
	defer f.Close()
	got, err := ReadJSON(f, JSONOptions{Path: "$.session.laps[*]", NumericScale: 0.001})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "LEC", got[0].Driver)
	assert.Equal(t, 1, got[0].LapNumber)
	assert.InDelta(t, 95.123, got[0].LapTime.GetOrZero(), 1e-9)
	assert.InDelta(t, 30.0, got[0].Sectors[0].GetOrZero(), 1e-9)
	assert.True(t, got[0].Sectors[1].IsUnset())
	assert.True(t, got[1].LapTime.IsUnset())
	assert.True(t, got[2].Position.IsUnset())
}

func TestReadJSONDefaultPath(t *testing.T) {
	data := `[{"Driver":"NOR","LapNumber":1,"Compound":"M","Stint":1,"LapTime":"1:30.5"}]`
	got, err := ReadJSON(strings.NewReader(data), JSONOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.CompoundMedium, got[0].Compound)
	assert.InDelta(t, 90.5, got[0].LapTime.GetOrZero(), 1e-9)

	_, err = ReadJSON(strings.NewReader(`[{"Driver":"NOR"}]`), JSONOptions{})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestReadJSONSecondsColumns(t *testing.T) {
	tests := []struct {
		name string
		data string
		want float64
	}{
		{
			name: "milliseconds",
			data: `[{"Driver":"VER","LapNumber":1,"Compound":"S","Stint":1,"LapTime":92500}]`,
			want: 92.5,
		},
		{
			name: "seconds suffix",
			data: `[{"Driver":"VER","LapNumber":1,"Compound":"S","Stint":1,"LapTime_s":92.5,"Sector1Time_s":30}]`,
			want: 92.5,
		},
		{
			name: "seconds unit",
			data: `[{"Driver":"VER","LapNumber":1,"Compound":"S","Stint":1,"LapTime(s)":92.5}]`,
			want: 92.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadJSON(strings.NewReader(tt.data), JSONOptions{})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.InDelta(t, tt.want, got[0].LapTime.GetOrZero(), 1e-9)
			if s1, ok := got[0].Sectors[0].Get(); ok {
				assert.InDelta(t, 30.0, s1, 1e-9)
			}
		})
	}
}

func TestDurationScale(t *testing.T) {
	s, err := DurationScale("s")
	require.NoError(t, err)
	assert.Equal(t, 1.0, s)
	_, err = DurationScale("h")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestFileProvider(t *testing.T) {
	p := NewFileProvider("testdata", WithJSONOptions(JSONOptions{Path: "$.session.laps[*]", NumericScale: 0.001}))
	got, err := p.Laps(context.Background(), monza)
	require.NoError(t, err)
	assert.Len(t, got, 5)

	got, err = p.Laps(context.Background(), bahrain)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = p.Laps(context.Background(), SessionKey{Year: 2024, Event: "Monaco", Session: "R"})
	assert.ErrorIs(t, err, ErrNotAvailable)
}

type countingProvider struct {
	calls int
	laps  []model.LapRecord
	err   error
}

func (c *countingProvider) Laps(ctx context.Context, key SessionKey) ([]model.LapRecord, error) {
	c.calls++
	return c.laps, c.err
}

func TestCachedProvider(t *testing.T) {
	src := &countingProvider{laps: []model.LapRecord{{Driver: "VER", LapNumber: 1}}}
	p := NewCachedProvider(src, time.Minute)
	for range 3 {
		got, err := p.Laps(context.Background(), monza)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 1, src.calls)
	p.Invalidate(context.Background(), monza)
	_, _ = p.Laps(context.Background(), monza)
	assert.Equal(t, 2, src.calls)
}

func TestChain(t *testing.T) {
	missing := &countingProvider{err: ErrNotAvailable}
	failing := &countingProvider{err: errors.New("boom")}
	found := &countingProvider{laps: []model.LapRecord{{Driver: "HAM"}}}

	got, err := Chain{missing, found}.Laps(context.Background(), monza)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = Chain{missing, failing, found}.Laps(context.Background(), monza)
	assert.EqualError(t, err, "boom")

	_, err = Chain{missing}.Laps(context.Background(), monza)
	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestFileProviderMissingDir(t *testing.T) {
	p := NewFileProvider(filepath.Join(t.TempDir(), "nope"))
	_, err := p.Laps(context.Background(), monza)
	assert.ErrorIs(t, err, ErrNotAvailable)
}
