package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds model names, versions and transformation ids.
const maxNameLength = 256

// KeySeparator joins a model name and its version in a model key.
const KeySeparator = ":"

// ValidateModelName validates a model name. Names are free-form apart
// from what a model key needs:
//   - No empty names
//   - No ':' (reserved as the name/version separator of model keys)
//   - Maximum length of 256 characters
func ValidateModelName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidModel, "model name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidModel, "model name too long (max %d characters)", maxNameLength)
	}
	if strings.Contains(name, KeySeparator) {
		return New(ErrCodeInvalidModel, "model name cannot contain %q: %q", KeySeparator, name)
	}
	return nil
}

// ValidateModelVersion validates a model version. Any version string is
// accepted, including non-semantic ones such as "3.0.0.SNAPSHOT", as long
// as the model key can be split again.
func ValidateModelVersion(version string) error {
	if len(version) > maxNameLength {
		return New(ErrCodeInvalidModel, "model version too long (max %d characters)", maxNameLength)
	}
	if strings.Contains(version, KeySeparator) {
		return New(ErrCodeInvalidModel, "model version cannot contain %q: %q", KeySeparator, version)
	}
	return nil
}

// ValidateTransformationID validates a user-supplied transformation id.
// An empty id is valid: the graph assigns one. Any other string up to 256
// bytes is accepted.
func ValidateTransformationID(id string) error {
	if len(id) > maxNameLength {
		return New(ErrCodeInvalidInput, "transformation id too long (max %d characters)", maxNameLength)
	}
	return nil
}

// ValidatePath validates a transformation file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateURL validates a broker or store URL.
// It ensures the URL carries one of the allowed schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}

	return New(ErrCodeInvalidInput, "URL must use one of the schemes: %s", strings.Join(schemes, ", "))
}
