package provider

import (
	"context"
	"fmt"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

// Static serves sessions held in memory
type Static map[SessionKey][]model.LapRecord

func (s Static) Laps(_ context.Context, key SessionKey) ([]model.LapRecord, error) {
	laps, ok := s[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAvailable, key)
	}
	return laps, nil
}
