//nolint:whitespace // can't make both editor and linter happy
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
	"github.com/mpapenbr/tyre-strategy/pkg/repository"
)

var ErrNotFound = errors.New("session not found")

const selectSession = `
select s.id, s.year, s.event, s.session_type, s.imported_at,
	(select count(*) from lap l where l.session_id = s.id)
from session s
`

// Create stores a new session. ID and ImportedAt are assigned here.
func Create(ctx context.Context, conn repository.Querier, s *model.DbSession) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	row := conn.QueryRow(ctx, `
	insert into session (id, year, event, session_type)
	values ($1, $2, $3, $4)
	returning imported_at
	`, id, s.Year, s.Event, s.SessionType)
	if err := row.Scan(&s.ImportedAt); err != nil {
		return fmt.Errorf("create session %d/%s/%s: %w",
			s.Year, s.Event, s.SessionType, err)
	}
	s.ID = id
	return nil
}

func LoadByID(ctx context.Context, conn repository.Querier, id uuid.UUID) (
	*model.DbSession, error,
) {
	return scanOne(conn.QueryRow(ctx, selectSession+"where s.id=$1", id))
}

// LoadByKey finds a session by year, event and session type. The event name
// is compared case-insensitive.
func LoadByKey(
	ctx context.Context,
	conn repository.Querier,
	year int,
	event, sessionType string,
) (*model.DbSession, error) {
	return scanOne(conn.QueryRow(ctx, selectSession+`
	where s.year=$1 and lower(s.event)=lower($2) and s.session_type=$3`,
		year, event, sessionType))
}

func LoadAll(ctx context.Context, conn repository.Querier) ([]*model.DbSession, error) {
	rows, err := conn.Query(ctx, selectSession+
		"order by s.year desc, s.event asc, s.session_type asc")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.DbSession, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, rows.Err()
}

// DeleteByID removes the session and its laps, returns number of sessions deleted.
func DeleteByID(ctx context.Context, conn repository.Querier, id uuid.UUID) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from session where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func scanOne(row pgx.Row) (*model.DbSession, error) {
	item, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

func scan(row pgx.Row) (*model.DbSession, error) {
	var item model.DbSession
	if err := row.Scan(
		&item.ID, &item.Year, &item.Event, &item.SessionType, &item.ImportedAt,
		&item.NumLaps,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
