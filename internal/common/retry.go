package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/salesflow/internal/service"
)

var (
	// ErrRateLimit marks a remote API quota rejection. Retries after one wait the full MaxDelay.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries is returned once every attempt has failed.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError carries an explicit retry decision for the error it wraps.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Permanent wraps err so WithRetry gives up on it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, Retryable: false}
}

func isPermanent(err error) bool {
	var re *RetryableError
	return errors.As(err, &re) && !re.Retryable
}

// backoff tracks the delay between attempts.
type backoff struct {
	next time.Duration
	max  time.Duration
	mult float64
}

func newBackoff(opts service.RetryOptions) (*backoff, int) {
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = 3
	}
	b := &backoff{next: opts.InitialDelay, max: opts.MaxDelay, mult: opts.Multiplier}
	if b.next <= 0 {
		b.next = 100 * time.Millisecond
	}
	if b.max <= 0 {
		b.max = 30 * time.Second
	}
	if b.mult <= 0 {
		b.mult = 2
	}
	return b, attempts
}

// wait returns the delay before the next attempt and grows the one after it.
func (b *backoff) wait(err error) time.Duration {
	if errors.Is(err, ErrRateLimit) {
		b.next = b.max
	}
	d := b.next
	b.next = min(time.Duration(float64(b.next)*b.mult), b.max)
	return d
}

// WithRetry calls operation until it succeeds. It stops early on a Permanent
// error or when ctx ends, and wraps the last failure in ErrMaxRetries once the
// attempts run out.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	b, attempts := newBackoff(opts)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = operation(); err == nil || isPermanent(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		delay := b.wait(err)
		slog.Warn("Retrying after failure",
			"attempt", attempt,
			"of", attempts,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempts, err)
}
