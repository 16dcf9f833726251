package errors

import (
	"strings"
	"unicode"
)

// ValidateDestination validates a logical destination declared by a package
// manifest (lpm.logical.destination). Destinations are interpreted relative
// to the project's Logical directory, so they must never escape it.
//
// Validation rules:
//   - No null bytes or control characters
//   - No absolute paths
//   - No parent directory segments (..)
//
// Backslashes are accepted as separators because manifests are authored on
// Windows; callers normalize them before use.
func ValidateDestination(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "destination cannot be empty")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "destination contains invalid characters")
		}
	}

	p := strings.ReplaceAll(path, "\\", "/")
	if strings.HasPrefix(p, "/") || (len(p) > 1 && p[1] == ':') {
		return New(ErrCodeInvalidPath, "destination must be relative: %q", path)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "destination cannot contain path traversal sequences (..): %q", path)
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

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
