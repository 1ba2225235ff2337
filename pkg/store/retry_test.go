package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	ctx := context.Background()
	errDown := errors.New("connection refused")

	tests := []struct {
		name      string
		failures  int
		transient bool
		wantCalls int
		wantErr   bool
	}{
		{"first try", 0, true, 1, false},
		{"recovers", 2, true, 3, false},
		{"gives up", 5, true, 3, true},
		{"permanent", 5, false, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retry(ctx, 3, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					if tt.transient {
						return transient(errDown)
					}
					return errDown
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && err != errDown {
				t.Errorf("err = %#v, want the unwrapped cause", err)
			}
		})
	}
}

func TestRetryCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry(ctx, 3, time.Hour, func() error { return transient(errors.New("down")) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestTransientNil(t *testing.T) {
	if transient(nil) != nil {
		t.Error("transient(nil) should be nil")
	}
}
