package errors

import (
	"strings"
	"testing"
)

func TestValidateModelName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "ModelA", false},
		{"valid dotted", "org.openengsb.domain.ModelA", false},
		{"valid with dash", "model-a", false},
		{"valid with dollar", "Outer$Inner", false},

		{"valid with space", "Contact Model", false},
		{"valid with hash", "model#2", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"separator", "model:1.0.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateModelName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateModelName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidModel) {
				t.Errorf("ValidateModelName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidModel)
			}
		})
	}
}

func TestValidateTransformationID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty means generated", "", false},
		{"simple", "test1", false},
		{"internal style", "EKBInternal-12", false},
		{"namespaced", "crm/contact-to-person", false},

		{"space", "my transformation", false},
		{"any characters", "#1 -> contact", false},

		{"too long", strings.Repeat("x", 300), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransformationID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTransformationID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateModelVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"semantic", "1.2.3", false},
		{"bundle", "3.0.0.SNAPSHOT", false},
		{"separator", "1:0", true},
		{"too long", strings.Repeat("1", 300), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateModelVersion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateModelVersion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidModel) {
				t.Errorf("ValidateModelVersion(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidModel)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "transformations/crm.xml", false},
		{"absolute", "/etc/modelgraph/crm.toml", false},

		{"empty", "", true},
		{"null byte", "foo\x00.xml", true},
		{"control char", "foo\x01.xml", true},
		{"too long", strings.Repeat("a", 5000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		schemes []string
		wantErr bool
	}{
		{"nats", "nats://localhost:4222", []string{"nats", "tls"}, false},
		{"tls", "tls://broker:4222", []string{"nats", "tls"}, false},
		{"empty", "", []string{"nats"}, true},
		{"wrong scheme", "http://localhost", []string{"nats"}, true},
		{"no scheme", "localhost:4222", []string{"nats"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input, tt.schemes...)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
