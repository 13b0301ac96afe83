package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// DbSession is an imported session
//
//nolint:tagliatelle // api compatibility
type DbSession struct {
	ID          uuid.UUID `json:"id"`
	Year        int       `json:"year"`
	Event       string    `json:"event"`
	SessionType string    `json:"session"`
	ImportedAt  time.Time `json:"importedAt"`
	NumLaps     int       `json:"numLaps,omitempty"`
}
