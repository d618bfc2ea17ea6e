package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignupPage handles GET /auth/signup/
func (s *Server) SignupPage(c *fiber.Ctx) error {
	return s.render(c, "auth/signup", fiber.Map{"form": newForm(&SignupForm{})})
}

// Signup handles POST /auth/signup/
func (s *Server) Signup(c *fiber.Ctx) error {
	data := &SignupForm{}
	form := bindForm(c, data)
	if form.Valid() {
		_, err := s.userService.Signup(c.UserContext(), service.SignupInput{
			Username:  data.Username,
			Email:     data.Email,
			FirstName: data.FirstName,
			LastName:  data.LastName,
			Password:  data.Password1,
		})
		if err == nil {
			return c.Redirect(middleware.LoginPath, fiber.StatusFound)
		}
		if !form.AddError(err) {
			return err
		}
	}
	data.Password1, data.Password2 = "", ""
	return s.render(c, "auth/signup", fiber.Map{"form": form})
}

// LoginPage handles GET /auth/login/
func (s *Server) LoginPage(c *fiber.Ctx) error {
	data := &LoginForm{Next: middleware.SafeNext(c.Query("next"), "")}
	return s.render(c, "auth/login", fiber.Map{"form": newForm(data), "next": data.Next})
}

// Login handles POST /auth/login/
func (s *Server) Login(c *fiber.Ctx) error {
	data := &LoginForm{}
	form := bindForm(c, data)
	if data.Next == "" {
		data.Next = c.Query("next")
	}
	data.Next = middleware.SafeNext(data.Next, "")

	if form.Valid() {
		user, err := s.userService.Authenticate(c.UserContext(), data.Username, data.Password)
		switch {
		case err == nil:
			if err := s.startSession(c, user); err != nil {
				return err
			}
			return c.Redirect(middleware.SafeNext(data.Next, "/"), fiber.StatusFound)
		case models.HasCode(err, models.CodeUnauthorized):
			var appErr *models.AppError
			errors.As(err, &appErr)
			form.Add(nonFieldErrors, appErr.Message)
		default:
			return err
		}
	}
	data.Password = ""
	return s.render(c, "auth/login", fiber.Map{"form": form, "next": data.Next})
}

// Logout handles GET and POST /auth/logout/
func (s *Server) Logout(c *fiber.Ctx) error {
	if raw := middleware.TokenFromRequest(c); raw != "" {
		if err := s.tokens.Revoke(c.UserContext(), raw); err != nil {
			s.logger.WarnContext(c.UserContext(), "failed to revoke token", slog.String("error", err.Error()))
		}
	}
	c.Cookie(s.sessionCookie("", time.Unix(0, 0)))
	return c.Redirect("/", fiber.StatusFound)
}

func (s *Server) startSession(c *fiber.Ctx, user *models.User) error {
	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		return models.NewInternalError(err)
	}
	c.Cookie(s.sessionCookie(token, exp))
	return nil
}

func (s *Server) sessionCookie(value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// sessionVerifier accepts a token only while the user it was issued to still exists.
type sessionVerifier struct {
	tokens *service.TokenService
	users  *service.UserService
}

func (v sessionVerifier) Verify(ctx context.Context, raw string) (uint, error) {
	userID, err := v.tokens.Verify(ctx, raw)
	if err != nil {
		return 0, err
	}
	// Other lookup failures keep the session; the handler reports them.
	if _, err := v.users.GetByID(ctx, userID); models.IsNotFound(err) {
		return 0, err
	}
	return userID, nil
}
