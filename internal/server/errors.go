package server

import (
	"errors"
	"log/slog"

	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// mapServiceError converts a service error into an HTTP status code.
func mapServiceError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders the 404 and 500 pages. Other statuses get a plain text body.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	var code int
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		code = mapServiceError(err)
	}

	switch {
	case code == fiber.StatusNotFound:
		c.Status(fiber.StatusNotFound)
		if rerr := s.render(c, "misc/404", fiber.Map{"path": c.Path()}); rerr != nil {
			return c.SendString("Not Found")
		}
		return nil
	case code >= fiber.StatusInternalServerError:
		s.logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
		c.Status(code)
		if rerr := s.render(c, "misc/500", nil); rerr != nil {
			return c.SendString("Internal Server Error")
		}
		return nil
	default:
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		return c.Status(code).SendString(message)
	}
}
