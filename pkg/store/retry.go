package store

import (
	"context"
	"errors"
	"time"
)

// Connection retry settings for remote backends.
var (
	connectAttempts = 3
	connectDelay    = 500 * time.Millisecond
)

// transientError marks an error worth another attempt.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// retry calls fn until it succeeds, returns a non-transient error or the
// attempts run out. The delay doubles after each failure. The last error is
// returned unwrapped.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	var te *transientError
	if errors.As(lastErr, &te) {
		return te.err
	}
	return lastErr
}
