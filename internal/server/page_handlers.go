package server

import (
	"errors"
	"strconv"

	"yatube/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// AboutAuthor handles GET /about/author/
func (s *Server) AboutAuthor(c *fiber.Ctx) error {
	return s.render(c, "about/author", nil)
}

// AboutTech handles GET /about/tech/
func (s *Server) AboutTech(c *fiber.Ctx) error {
	return s.render(c, "about/tech", nil)
}

// ServeMedia handles GET /media/* by streaming the object from storage.
func (s *Server) ServeMedia(c *fiber.Ctx) error {
	if s.storage == nil {
		return fiber.ErrNotFound
	}
	key, err := storage.CleanKey(c.Params("*"))
	if err != nil {
		return fiber.ErrNotFound
	}

	rc, info, err := s.storage.Get(c.UserContext(), key)
	if errors.Is(err, storage.ErrNotFound) {
		return fiber.ErrNotFound
	}
	if err != nil {
		return err
	}

	if info.ContentType != "" {
		c.Set(fiber.HeaderContentType, info.ContentType)
	}
	if info.ETag != "" {
		c.Set(fiber.HeaderETag, strconv.Quote(info.ETag))
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	size := int(info.Size)
	if size <= 0 {
		size = -1
	}
	return c.SendStream(rc, size)
}
