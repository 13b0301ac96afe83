//nolint:whitespace //can't make both the linter and editor happy :(
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/tyre-strategy/log"
	"github.com/mpapenbr/tyre-strategy/pkg/model"
	"github.com/mpapenbr/tyre-strategy/pkg/provider"
	"github.com/mpapenbr/tyre-strategy/pkg/repository/lap"
	"github.com/mpapenbr/tyre-strategy/pkg/repository/session"
)

var ErrSessionExists = errors.New("session already imported")

// SessionService manages sessions imported into the database
type SessionService struct {
	pool *pgxpool.Pool
}

func NewSessionService(pool *pgxpool.Pool) *SessionService {
	return &SessionService{pool: pool}
}

// Import stores the laps of a session. An existing session with the same
// key is replaced if replace is true, otherwise ErrSessionExists is returned.
func (s *SessionService) Import(
	ctx context.Context,
	key provider.SessionKey,
	laps []model.LapRecord,
	replace bool,
) (*model.DbSession, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	item := &model.DbSession{Year: key.Year, Event: key.Event, SessionType: key.Session}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		existing, err := session.LoadByKey(ctx, tx, key.Year, key.Event, key.Session)
		switch {
		case errors.Is(err, session.ErrNotFound):
		case err != nil:
			return err
		case !replace:
			return fmt.Errorf("%w: %s", ErrSessionExists, key)
		default:
			if _, err := session.DeleteByID(ctx, tx, existing.ID); err != nil {
				return err
			}
			log.Debug("Replacing session", log.Stringer("session", key))
		}
		if err := session.Create(ctx, tx, item); err != nil {
			return err
		}
		n, err := lap.CreateBatch(ctx, tx, item.ID, laps)
		if err != nil {
			return err
		}
		item.NumLaps = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("Session imported",
		log.Stringer("session", key),
		log.Int("laps", item.NumLaps))
	return item, nil
}

func (s *SessionService) List(ctx context.Context) ([]*model.DbSession, error) {
	return session.LoadAll(ctx, s.pool)
}

// Delete removes a session with its laps. Returns false if there was none.
func (s *SessionService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	num, err := session.DeleteByID(ctx, s.pool, id)
	if err != nil {
		return false, err
	}
	return num > 0, nil
}
