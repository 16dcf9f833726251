package httputil

import (
	"context"
	"errors"
	"time"
)

const (
	defaultAttempts = 3
	defaultDelay    = time.Second
)

// RetryableError marks a failure as transient, such as a timeout or a 5xx
// response. Only errors wrapping one are retried by [Retry].
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err in a [RetryableError]. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err wraps a [RetryableError].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Retry calls fn until it succeeds, fails with a non-retryable error, or
// attempts calls have been made. The wait starts at delay and doubles after
// every retry. Cancelling ctx during a wait returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return err
}

// RetryWithBackoff is [Retry] with three attempts starting one second apart.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, defaultAttempts, defaultDelay, fn)
}
