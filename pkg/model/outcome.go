package model

import (
	"errors"
	"fmt"
)

// ErrValidation marks errors caused by invalid input or configuration.
// These are reported, never replaced by a guessed value.
var ErrValidation = errors.New("validation failed")

// ValidationError wraps ErrValidation with a description.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

type Status int

const (
	StatusOK Status = iota
	StatusEmpty
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the result of an analysis step. An empty outcome means there
// was nothing to compute (not an error), an error outcome carries the
// reason why the request could not be served.
type Outcome[T any] struct {
	Status Status `json:"status"`
	Value  T      `json:"value,omitempty"`
	Reason string `json:"reason,omitempty"`
	Err    error  `json:"-"`
}

func OK[T any](v T) Outcome[T] {
	return Outcome[T]{Status: StatusOK, Value: v}
}

func Empty[T any](reason string) Outcome[T] {
	return Outcome[T]{Status: StatusEmpty, Reason: reason}
}

func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{Status: StatusError, Err: err, Reason: err.Error()}
}

// FromResult converts the (value, error) pair of a hard validating operation.
func FromResult[T any](v T, err error) Outcome[T] {
	if err != nil {
		return Failed[T](err)
	}
	return OK(v)
}

func (o Outcome[T]) IsOK() bool    { return o.Status == StatusOK }
func (o Outcome[T]) IsEmpty() bool { return o.Status == StatusEmpty }
func (o Outcome[T]) IsError() bool { return o.Status == StatusError }
