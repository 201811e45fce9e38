package errors

import (
	"strings"
	"unicode"
)

// MaxNodeIDLength bounds node identifiers. Repository URLs are well below it.
const MaxNodeIDLength = 2048

// ValidateNodeID checks a graph node identifier.
//
// The rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters (they break CSV and terminal output)
//   - Maximum length of MaxNodeIDLength bytes
//
// Failures are structural errors: the graph itself is unusable.
func ValidateNodeID(id string) error {
	if id == "" {
		return Structural("node id cannot be empty")
	}
	if len(id) > MaxNodeIDLength {
		return Structural("node id too long (max %d characters)", MaxNodeIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return Structural("node id %q contains control characters", id)
		}
	}
	return nil
}

// ValidatePath validates a user-supplied output path.
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

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
