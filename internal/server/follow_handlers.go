package server

import (
	"yatube/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// ProfileFollow handles GET /:username/follow/
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)
	author, err := s.followService.Follow(c.UserContext(), userID, usernameParam(c))
	if err != nil {
		return err
	}
	return c.Redirect(profileURL(author.Username), fiber.StatusFound)
}

// ProfileUnfollow handles GET /:username/unfollow/
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)
	author, err := s.followService.Unfollow(c.UserContext(), userID, usernameParam(c))
	if err != nil {
		return err
	}
	return c.Redirect(profileURL(author.Username), fiber.StatusFound)
}
