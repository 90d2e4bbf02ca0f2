package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxPackageIDLength is the longest id nuget.org accepts.
const maxPackageIDLength = 100

// packageIDRegex matches valid NuGet package ids.
var packageIDRegex = regexp.MustCompile(`^\w+([_.-]\w+)*$`)

// ValidatePackageID validates a NuGet package id.
//
// The rules match what nuget.org accepts on push:
//   - No empty ids
//   - At most 100 characters
//   - Letters, digits, '.', '_' and '-' only, with no leading, trailing or doubled separator
func ValidatePackageID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidPackage, "package id cannot be empty")
	}

	if len(id) > maxPackageIDLength {
		return New(ErrCodeInvalidPackage, "package id too long (max %d characters)", maxPackageIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package id contains invalid control characters")
		}
	}

	if !packageIDRegex.MatchString(id) {
		return New(ErrCodeInvalidPackage, "invalid package id: %q", id)
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
