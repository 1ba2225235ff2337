package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	mgerrors "github.com/matzehuels/modelgraph/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"interrupted", fmt.Errorf("load: %w", context.Canceled), exitInterrupted},
		{"no path", &mgerrors.NoPathError{Source: "A:1.0.0", Target: "B:1.0.0"}, exitNoPath},
		{"coded", mgerrors.New(mgerrors.ErrCodeInvalidModel, "bad model"), 1},
		{"plain", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestVerboseFlag(t *testing.T) {
	root := newRoot()
	if root.PersistentFlags().Lookup("verbose") == nil {
		t.Fatal("root command has no --verbose flag")
	}
	if root.PersistentPreRunE == nil {
		t.Fatal("root command has no persistent pre-run")
	}
}
