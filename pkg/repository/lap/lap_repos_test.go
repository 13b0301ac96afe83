//nolint:funlen,lll // ok for this test code
package lap

import (
	"context"
	"testing"

	"github.com/aarondl/opt/omit"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5"
	"gotest.tools/v3/assert"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
	"github.com/mpapenbr/tyre-strategy/pkg/repository/session"
	"github.com/mpapenbr/tyre-strategy/testsupport/testdb"
)

var sampleLaps = []model.LapRecord{
	{
		Driver: "VER", LapNumber: 1, Compound: model.CompoundMedium, Stint: 1,
		LapTime: omit.From(87.5), Time: omit.From(3687.5),
		Sectors:  [3]omit.Val[float64]{{}, omit.From(28.1), omit.From(30.25)},
		Position: omit.From(1),
	},
	{
		Driver: "VER", LapNumber: 2, Compound: model.CompoundMedium, Stint: 1,
		PitInTime: omit.From(3770.1234),
	},
	// duplicate, dropped
	{Driver: "VER", LapNumber: 2, Compound: model.CompoundHard, Stint: 2},
	{
		Driver: "HAM", LapNumber: 1, Compound: model.CompoundHard, Stint: 1,
		LapTime: omit.From(88.001), Position: omit.From(2),
	},
}

func TestCreateBatchAndLoad(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	s := &model.DbSession{Year: 2024, Event: "Italian Grand Prix", SessionType: "R"}

	var num int
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if err := session.Create(ctx, tx, s); err != nil {
			return err
		}
		var err error
		num, err = CreateBatch(ctx, tx, s.ID, sampleLaps)
		return err
	})
	assert.NilError(t, err)
	assert.Equal(t, 3, num)

	got, err := LoadBySessionID(ctx, pool, s.ID)
	assert.NilError(t, err)

	want := []model.LapRecord{
		sampleLaps[3],
		sampleLaps[0],
		{
			Driver: "VER", LapNumber: 2, Compound: model.CompoundMedium, Stint: 1,
			PitInTime: omit.From(3770.123), // rounded to milliseconds
		},
	}
	assert.DeepEqual(t, want, got,
		cmpopts.EquateComparable(omit.Val[float64]{}, omit.Val[int]{}))

	loaded, err := session.LoadByID(ctx, pool, s.ID)
	assert.NilError(t, err)
	assert.Equal(t, 3, loaded.NumLaps)

	deleted, err := DeleteBySessionID(ctx, pool, s.ID)
	assert.NilError(t, err)
	assert.Equal(t, 3, deleted)
}

func TestIntPtr(t *testing.T) {
	assert.Assert(t, intPtr(omit.Val[int]{}) == nil)
	got := intPtr(omit.From(7))
	assert.Assert(t, got != nil)
	assert.Equal(t, 7, *got)
}
