package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	transient := Retryable(errors.New("status 503"))
	permanent := errors.New("status 401")

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{"success", []error{nil}, 1, nil},
		{"transient then success", []error{transient, nil}, 2, nil},
		{"permanent", []error{permanent, nil}, 1, permanent},
		{"exhausted", []error{transient, transient, transient}, 3, transient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), 3, time.Millisecond, func() error {
				e := tt.errs[calls]
				calls++
				return e
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) && err != tt.wantErr {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error { return Retryable(errors.New("timeout")) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	if !IsRetryable(Retryable(errors.New("x"))) {
		t.Error("IsRetryable() = false for wrapped error")
	}
	if IsRetryable(errors.New("x")) {
		t.Error("IsRetryable() = true for plain error")
	}
}
