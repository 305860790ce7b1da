package rooms

import (
	"regexp"
	"strconv"

	"roompad/backend/internal/config"
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateSlug rejects slugs that are empty, too long or not URL-safe.
func ValidateSlug(s string) error {
	if s == "" {
		return &ValidationError{Field: "slug", Message: "must not be empty"}
	}
	if len(s) > config.SlugMaxLength {
		return &ValidationError{Field: "slug", Message: "must be at most " + strconv.Itoa(config.SlugMaxLength) + " characters"}
	}
	if !slugPattern.MatchString(s) {
		return &ValidationError{Field: "slug", Message: "may only contain letters, digits, '-' and '_'"}
	}
	return nil
}
