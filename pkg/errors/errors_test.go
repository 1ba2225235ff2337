package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewAndWrap(t *testing.T) {
	err := New(ErrCodeInvalidModel, "model %q has no name", "")
	if got, want := err.Error(), `INVALID_MODEL: model "" has no name`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	cause := errors.New("connection reset")
	wrapped := Wrap(ErrCodeInvalidState, cause, "read node %s", "A:1.0.0")
	if wrapped.Code != ErrCodeInvalidState || wrapped.Message != "read node A:1.0.0" {
		t.Errorf("Wrap() = %+v", wrapped)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("wrapped error does not match its cause")
	}
	if errors.Unwrap(wrapped) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(wrapped), cause)
	}
}

func TestCodes(t *testing.T) {
	noPath := &NoPathError{Source: "A:1.0.0", Target: "B:1.0.0"}

	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(ErrCodeFileNotFound, "missing"), ErrCodeFileNotFound},
		{"outer code wins", Wrap(ErrCodeNetwork, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeNetwork},
		{"fmt wrapped", fmt.Errorf("load: %w", New(ErrCodeInvalidFormat, "bad xml")), ErrCodeInvalidFormat},
		{"joined", errors.Join(New(ErrCodeUnsupported, "png"), nil), ErrCodeUnsupported},
		{"no path", noPath, ErrCodeNoPathFound},
		{"no path wrapped", fmt.Errorf("resolve: %w", noPath), ErrCodeNoPathFound},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
			if tt.want != "" && !Is(tt.err, tt.want) {
				t.Errorf("Is(err, %s) = false", tt.want)
			}
			if Is(tt.err, ErrCodeInternal) {
				t.Errorf("Is(err, %s) = true", ErrCodeInternal)
			}
		})
	}

	if Is(nil, "") {
		t.Error("Is(nil, \"\") = true")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{New(ErrCodeInvalidModel, "model name is empty"), "model name is empty"},
		{fmt.Errorf("config: %w", New(ErrCodeInvalidConfig, "unknown backend")), "unknown backend"},
		{&NoPathError{Source: "A:1.0.0", Target: "B:1.0.0"}, "no transformation path from A:1.0.0 to B:1.0.0"},
		{errors.New("plain error"), "plain error"},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestNoPathError(t *testing.T) {
	err := &NoPathError{Source: "A:1.0.0", Target: "C:1.0.0", Required: []string{"x", "y"}}
	if got, want := err.Error(), "no transformation path from A:1.0.0 to C:1.0.0 using [x, y]"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	var target *NoPathError
	if !errors.As(fmt.Errorf("wrap: %w", err), &target) {
		t.Fatal("errors.As() = false, want true")
	}
	if target.Source != "A:1.0.0" || target.Target != "C:1.0.0" || len(target.Required) != 2 {
		t.Errorf("unwrapped = %+v", target)
	}
}
