package validation

import (
	"errors"
	"regexp"
)

var slugRegex = regexp.MustCompile(`^[-a-zA-Z0-9_]{1,50}$`)

// ValidateSlug accepts 1-50 letters, digits, hyphens or underscores.
func ValidateSlug(slug string) error {
	if !slugRegex.MatchString(slug) {
		return errors.New("slug must be 1-50 characters of letters, numbers, underscores or hyphens")
	}
	return nil
}
