// Package provider delivers the lap table of a session.
package provider

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

// ErrNotAvailable is returned when a provider has no data for a session.
var ErrNotAvailable = errors.New("session not available")

type (
	SessionKey struct {
		Year    int    `json:"year"`
		Event   string `json:"event"`
		Session string `json:"session"` // R, Q, FP1, ...
	}
	SessionDataProvider interface {
		Laps(ctx context.Context, key SessionKey) ([]model.LapRecord, error)
	}
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func (k SessionKey) String() string {
	return fmt.Sprintf("%d %s %s", k.Year, k.Event, k.Session)
}

// Slug returns a file name friendly representation, e.g. 2024_italian_grand_prix_r
func (k SessionKey) Slug() string {
	event := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(k.Event), "_"), "_")
	return fmt.Sprintf("%d_%s_%s", k.Year, event, strings.ToLower(k.Session))
}

func (k SessionKey) Validate() error {
	if k.Year <= 0 {
		return model.ValidationError("year must be > 0")
	}
	if strings.TrimSpace(k.Event) == "" {
		return model.ValidationError("event is required")
	}
	if strings.TrimSpace(k.Session) == "" {
		return model.ValidationError("session is required")
	}
	return nil
}
