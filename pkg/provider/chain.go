package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

// Chain asks the providers in order until one knows the session.
type Chain []SessionDataProvider

func (c Chain) Laps(ctx context.Context, key SessionKey) ([]model.LapRecord, error) {
	for _, p := range c {
		laps, err := p.Laps(ctx, key)
		if errors.Is(err, ErrNotAvailable) {
			continue
		}
		return laps, err
	}
	return nil, fmt.Errorf("%w: %s", ErrNotAvailable, key)
}
