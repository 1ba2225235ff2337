package model

import (
	"cmp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/modelgraph/pkg/errors"
)

// KeySeparator joins a model name and its version in a model key.
const KeySeparator = errors.KeySeparator

// ModelDescription identifies a versioned data model. Its [ModelDescription.Key]
// is the node identity used by the model graph.
//
// The zero value is not a valid model - Name must be set.
type ModelDescription struct {
	Name    string `json:"name" toml:"name"`                           // Model name, e.g. "org.example.Contact"
	Version string `json:"version,omitempty" toml:"version,omitempty"` // e.g. "1.0.0" or "3.0.0.SNAPSHOT", may be empty
}

// NewModel returns a model description for name and version.
func NewModel(name, version string) ModelDescription {
	return ModelDescription{Name: name, Version: version}
}

// Key returns the graph key of the model: "name:version", or just the
// name when the version is empty.
func (m ModelDescription) Key() string {
	if m.Version == "" {
		return m.Name
	}
	return m.Name + KeySeparator + m.Version
}

// String returns the model key.
func (m ModelDescription) String() string { return m.Key() }

// IsZero reports whether m has neither name nor version.
func (m ModelDescription) IsZero() bool { return m.Name == "" && m.Version == "" }

// Validate checks that the model forms a key that [ParseModel] can split
// again. Versions need not be semantic versions. Errors carry
// [errors.ErrCodeInvalidModel].
func (m ModelDescription) Validate() error {
	if err := errors.ValidateModelName(m.Name); err != nil {
		return err
	}
	return errors.ValidateModelVersion(m.Version)
}

// semVer parses the version for ordering. ok is false for empty or
// non-semantic versions.
func (m ModelDescription) semVer() (v *semver.Version, ok bool) {
	if m.Version == "" {
		return nil, false
	}
	v, err := semver.NewVersion(m.Version)
	return v, err == nil
}

// ParseModel parses a model key of the form "name:version" or "name".
// The split happens at the last separator. The result is validated.
func ParseModel(s string) (ModelDescription, error) {
	s = strings.TrimSpace(s)
	var m ModelDescription
	if i := strings.LastIndex(s, KeySeparator); i >= 0 {
		m = ModelDescription{Name: s[:i], Version: s[i+1:]}
		if m.Version == "" {
			return ModelDescription{}, errors.New(errors.ErrCodeInvalidModel, "model %q: empty version after %q", s, KeySeparator)
		}
	} else {
		m = ModelDescription{Name: s}
	}
	if err := m.Validate(); err != nil {
		return ModelDescription{}, err
	}
	return m, nil
}

// MustParseModel is like [ParseModel] but panics on error.
// It is intended for tests and static tables.
func MustParseModel(s string) ModelDescription {
	m, err := ParseModel(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Compare orders models by name, then by semantic version. Versions that
// do not parse sort before versions that do and compare as strings among
// themselves.
func Compare(a, b ModelDescription) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	va, okA := a.semVer()
	vb, okB := b.semVer()
	switch {
	case !okA && !okB:
		return cmp.Compare(a.Version, b.Version)
	case !okA:
		return -1
	case !okB:
		return 1
	}
	return va.Compare(vb)
}
