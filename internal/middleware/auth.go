// Package middleware provides request logging, tracing, rate limiting and authentication middleware.
package middleware

import (
	"context"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AccessTokenCookie is the name of the cookie carrying the session JWT.
const AccessTokenCookie = "access_token"

// LoginPath is where anonymous visitors of protected pages are sent.
const LoginPath = "/auth/login/"

// TokenVerifier resolves a raw access token into the id of the user it was issued to.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (uint, error)
}

// TokenFromRequest returns the access token from the cookie, falling back to a Bearer header.
func TokenFromRequest(c *fiber.Ctx) string {
	if tok := c.Cookies(AccessTokenCookie); tok != "" {
		return tok
	}
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// OptionalUser stores the authenticated user id in Locals("userID") when a valid token is present.
// Invalid, expired or revoked tokens leave the request anonymous and drop the stale cookie.
func OptionalUser(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := TokenFromRequest(c)
		if raw == "" {
			return c.Next()
		}
		userID, err := tokens.Verify(c.UserContext(), raw)
		if err != nil {
			c.ClearCookie(AccessTokenCookie)
			return c.Next()
		}
		c.Locals("userID", userID)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user id, if any.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals("userID").(uint)
	return uid, ok && uid != 0
}

// LoginURL builds the login redirect target for next, keeping its slashes readable.
func LoginURL(next string) string {
	return LoginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// LoginRequired redirects anonymous visitors to the login page with a next parameter.
func LoginRequired(c *fiber.Ctx) error {
	if _, ok := CurrentUserID(c); ok {
		return c.Next()
	}
	return c.Redirect(LoginURL(c.Path()), fiber.StatusFound)
}

// SafeNext returns next when it is a local absolute path, otherwise fallback.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}
