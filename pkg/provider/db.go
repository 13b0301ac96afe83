package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
	"github.com/mpapenbr/tyre-strategy/pkg/repository"
	"github.com/mpapenbr/tyre-strategy/pkg/repository/lap"
	"github.com/mpapenbr/tyre-strategy/pkg/repository/session"
)

// DBProvider serves sessions imported into postgres
type DBProvider struct {
	conn repository.Querier
}

func NewDBProvider(conn repository.Querier) *DBProvider {
	return &DBProvider{conn: conn}
}

func (p *DBProvider) Laps(ctx context.Context, key SessionKey) ([]model.LapRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	s, err := session.LoadByKey(ctx, p.conn, key.Year, key.Event, key.Session)
	if errors.Is(err, session.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotAvailable, key)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", key, err)
	}
	return lap.LoadBySessionID(ctx, p.conn, s.ID)
}
