// Package common holds the error types, retry helper and logger setup shared
// by every salesflow package.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors. Callers wrap them with detail and test with errors.Is.
var (
	ErrMissingSource = errors.New("missing input source")
	ErrMissingColumn = errors.New("missing required column")
	ErrNotFound      = errors.New("not found")
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// MissingSourceError reports the location a run expected its input at.
func MissingSourceError(location string) error {
	return NewUserError(
		fmt.Sprintf("Place the full submissions export at %s", location),
		fmt.Errorf("%w: %s", ErrMissingSource, location),
	)
}

// UserError pairs an internal error with a message meant for the person at the terminal.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.UserMessage
	}
	return e.UserMessage + ": " + e.Err.Error()
}

func (e *UserError) Unwrap() error { return e.Err }

// NewUserError wraps err with a user-facing message.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}

// IsRetryable reports whether err is worth another attempt: rate limits,
// deadlines and errors explicitly marked retryable.
func IsRetryable(err error) bool {
	switch {
	case errors.Is(err, ErrRateLimit), errors.Is(err, context.DeadlineExceeded):
		return true
	case isPermanent(err):
		return false
	}
	var re *RetryableError
	return errors.As(err, &re)
}
