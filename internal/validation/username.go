// Package validation holds input rules shared by forms and services.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// reservedUsernames are first path segments owned by the router.
var reservedUsernames = map[string]struct{}{
	"about":   {},
	"admin":   {},
	"auth":    {},
	"follow":  {},
	"group":   {},
	"health":  {},
	"media":   {},
	"metrics": {},
	"new":     {},
	"static":  {},
}

// ValidateUsername checks length, allowed characters and reserved names.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < 3 || n > 150 {
		return errors.New("username must be between 3 and 150 characters")
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("username may contain only letters, digits and @/./+/-/_")
	}
	if IsReservedUsername(username) {
		return errors.New("username is reserved")
	}
	return nil
}

// IsReservedUsername reports whether name collides with a top-level route.
func IsReservedUsername(name string) bool {
	_, ok := reservedUsernames[strings.ToLower(name)]
	return ok
}
