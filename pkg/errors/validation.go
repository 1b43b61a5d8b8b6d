package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxIDLength bounds element identifiers read from scene files.
const MaxIDLength = 256

// ValidateElementID validates an element identifier from a scene file.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No surrounding whitespace
//   - Maximum length of MaxIDLength characters
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidElement, "element id cannot be empty")
	}

	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidElement, "element id too long (max %d characters)", MaxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidElement, "element id contains invalid control characters")
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidElement, "element id %q has surrounding whitespace", id)
	}

	return nil
}

// ValidateLength validates a coordinate-space length such as a width, a
// height or a gap. It must be finite and not negative.
func ValidateLength(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a finite number", name)
	}
	if v < 0 {
		return New(ErrCodeInvalidInput, "%s cannot be negative (got %g)", name, v)
	}
	return nil
}

// ValidateCoordinate validates a position, which may be negative but must
// be finite.
func ValidateCoordinate(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a finite number", name)
	}
	return nil
}

// ValidateViewport validates viewport dimensions. Both must be positive.
func ValidateViewport(width, height float64) error {
	for _, d := range []struct {
		name string
		v    float64
	}{{"viewport width", width}, {"viewport height", height}} {
		if err := ValidateLength(d.name, d.v); err != nil {
			return Wrap(ErrCodeInvalidViewport, err, "invalid viewport")
		}
		if d.v == 0 {
			return New(ErrCodeInvalidViewport, "%s must be positive", d.name)
		}
	}
	return nil
}

// ValidatePath validates a scene file path for safety.
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
