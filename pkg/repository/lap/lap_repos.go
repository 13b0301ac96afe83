//nolint:whitespace // can't make both editor and linter happy
package lap

import (
	"context"
	"fmt"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
	"github.com/mpapenbr/tyre-strategy/pkg/repository"
)

// times are stored with millisecond precision
const timePlaces = 3

var lapColumns = []string{
	"session_id", "driver", "lap_number", "compound", "stint",
	"lap_time", "session_time", "pit_in_time", "pit_out_time",
	"sector1_time", "sector2_time", "sector3_time", "position",
}

// CreateBatch stores laps of a session. Rows with the same driver and lap
// number are stored once (first occurrence wins).
// Returns the number of rows written.
func CreateBatch(
	ctx context.Context,
	conn repository.Querier,
	sessionID uuid.UUID,
	laps []model.LapRecord,
) (int, error) {
	unique := lo.UniqBy(laps, func(l model.LapRecord) string {
		return fmt.Sprintf("%s/%d", l.Driver, l.LapNumber)
	})
	rows := lo.Map(unique, func(l model.LapRecord, _ int) []any {
		return []any{
			sessionID, l.Driver, l.LapNumber, string(l.Compound), l.Stint,
			toNumeric(l.LapTime), toNumeric(l.Time),
			toNumeric(l.PitInTime), toNumeric(l.PitOutTime),
			toNumeric(l.Sectors[0]), toNumeric(l.Sectors[1]), toNumeric(l.Sectors[2]),
			intPtr(l.Position),
		}
	})
	n, err := conn.CopyFrom(ctx, pgx.Identifier{"lap"}, lapColumns,
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("store laps: %w", err)
	}
	return int(n), nil
}

// LoadBySessionID returns the laps ordered by driver and lap number
func LoadBySessionID(
	ctx context.Context,
	conn repository.Querier,
	sessionID uuid.UUID,
) ([]model.LapRecord, error) {
	rows, err := conn.Query(ctx, `
	select driver, lap_number, compound, stint,
		lap_time, session_time, pit_in_time, pit_out_time,
		sector1_time, sector2_time, sector3_time, position
	from lap where session_id=$1
	order by driver asc, lap_number asc
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]model.LapRecord, 0)
	for rows.Next() {
		var (
			item     model.LapRecord
			compound string
			times    [7]pgtype.Numeric
			position *int
		)
		if err := rows.Scan(
			&item.Driver, &item.LapNumber, &compound, &item.Stint,
			&times[0], &times[1], &times[2], &times[3],
			&times[4], &times[5], &times[6],
			&position,
		); err != nil {
			return nil, err
		}
		item.Compound = model.Compound(compound)
		item.LapTime = fromNumeric(times[0])
		item.Time = fromNumeric(times[1])
		item.PitInTime = fromNumeric(times[2])
		item.PitOutTime = fromNumeric(times[3])
		for i := range item.Sectors {
			item.Sectors[i] = fromNumeric(times[4+i])
		}
		item.Position = omit.FromPtr(position)
		ret = append(ret, item)
	}
	return ret, rows.Err()
}

func DeleteBySessionID(
	ctx context.Context,
	conn repository.Querier,
	sessionID uuid.UUID,
) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from lap where session_id=$1", sessionID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// intPtr maps an unset value to a sql null
func intPtr(v omit.Val[int]) *int {
	if x, ok := v.Get(); ok {
		return &x
	}
	return nil
}

func toNumeric(v omit.Val[float64]) pgtype.Numeric {
	f, ok := v.Get()
	if !ok {
		return pgtype.Numeric{}
	}
	d := decimal.NewFromFloat(f).Round(timePlaces)
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func fromNumeric(n pgtype.Numeric) omit.Val[float64] {
	if !n.Valid || n.NaN || n.Int == nil {
		return omit.Val[float64]{}
	}
	return omit.From(decimal.NewFromBigInt(n.Int, n.Exp).InexactFloat64())
}
