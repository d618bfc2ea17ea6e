package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"yatube/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templateFS embed.FS

const (
	csrfFormField  = "csrfmiddlewaretoken"
	csrfContextKey = "csrf"
)

// NewViews loads the embedded page templates. imageURL turns a stored image key into a link.
func NewViews(imageURL func(key string) string) (*html.Engine, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(template.FuncMap{
		"imageURL":     imageURL,
		"date":         formatDate,
		"linebreaksbr": linebreaksbr,
		"pageURL":      pageURL,
		"loginURL":     middleware.LoginURL,
	})
	if err := engine.Load(); err != nil {
		return nil, err
	}
	return engine, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 January 2006 15:04")
}

// linebreaksbr escapes s and turns its newlines into <br>.
func linebreaksbr(s string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(s, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

func pageURL(n int) string {
	return fmt.Sprintf("?page=%d", n)
}

// imageURL resolves image keys for templates. Rendering has no request context at this point.
func (s *Server) imageURL(key string) string {
	if s.postService == nil {
		return ""
	}
	return s.postService.ImageURL(context.Background(), key)
}

// render executes a page template inside the base layout, adding the data every page needs.
func (s *Server) render(c *fiber.Ctx, name string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}
	bind["request_path"] = c.Path()
	if tok, ok := c.Locals(csrfContextKey).(string); ok {
		bind["csrf_token"] = tok
	}
	if uid, ok := middleware.CurrentUserID(c); ok {
		if user, err := s.userService.GetByID(c.UserContext(), uid); err == nil {
			bind["user"] = user
		}
	}
	return c.Render(name, bind)
}
