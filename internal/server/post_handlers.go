package server

import (
	"fmt"
	"net/url"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

func profileURL(username string) string {
	return "/" + url.PathEscape(username) + "/"
}

func postURL(username string, postID uint) string {
	return fmt.Sprintf("/%s/%d/", url.PathEscape(username), postID)
}

// usernameParam returns the decoded :username route parameter. Browsers
// percent-encode non-ASCII usernames and Fiber leaves route values as sent.
func usernameParam(c *fiber.Ctx) string {
	raw := c.Params("username")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

// parsePostID reads the post_id route parameter. Anything but a positive integer is a 404.
func parsePostID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("post_id")
	if err != nil || id <= 0 {
		return 0, fiber.ErrNotFound
	}
	return uint(id), nil
}

// Index handles GET /
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := s.postService.Index(c.UserContext(), c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, "index", fiber.Map{
		"page":      page,
		"paginator": page.Paginator,
	})
}

// GroupPosts handles GET /group/:slug/
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	group, page, err := s.postService.GroupPosts(c.UserContext(), c.Params("slug"), c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, "group", fiber.Map{
		"group":     group,
		"page":      page,
		"paginator": page.Paginator,
	})
}

// FollowIndex handles GET /follow/
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)
	page, err := s.postService.Feed(c.UserContext(), userID, c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, "follow", fiber.Map{
		"page":      page,
		"paginator": page.Paginator,
	})
}

// Profile handles GET /:username/
func (s *Server) Profile(c *fiber.Ctx) error {
	viewerID, _ := middleware.CurrentUserID(c)
	view, err := s.postService.Profile(c.UserContext(), usernameParam(c), viewerID, c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, "posts/profile", fiber.Map{
		"author":     view.Author,
		"page":       view.Page,
		"paginator":  view.Page.Paginator,
		"post_count": view.PostCount,
		"following":  view.Following,
	})
}

// PostView handles GET /:username/:post_id/
func (s *Server) PostView(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return err
	}
	view, err := s.postService.GetPost(c.UserContext(), usernameParam(c), postID)
	if err != nil {
		return err
	}
	return s.renderPost(c, view, newForm(&CommentForm{}))
}

func (s *Server) renderPost(c *fiber.Ctx, view *service.PostView, form *Form) error {
	return s.render(c, "posts/post", fiber.Map{
		"author":     view.Author,
		"post":       view.Post,
		"post_count": view.PostCount,
		"form":       form,
		"comments":   view.Comments,
	})
}

// NewPostPage handles GET /new/
func (s *Server) NewPostPage(c *fiber.Ctx) error {
	return s.renderPostForm(c, newForm(&PostForm{}), nil)
}

// CreatePost handles POST /new/
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)
	data := &PostForm{}
	form := bindForm(c, data)
	upload := readUpload(c, "image", form)
	groupID, err := data.GroupID()
	if err != nil {
		form.Add("group", err.Error())
	}

	if form.Valid() {
		_, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
			AuthorID: userID,
			Text:     data.Text,
			GroupID:  groupID,
			Image:    upload,
		})
		if err == nil {
			return c.Redirect("/", fiber.StatusFound)
		}
		if !form.AddError(err) {
			return err
		}
	}
	return s.renderPostForm(c, form, nil)
}

// PostEditPage handles GET /:username/:post_id/edit/
func (s *Server) PostEditPage(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return err
	}
	userID, _ := middleware.CurrentUserID(c)
	username := usernameParam(c)

	post, err := s.postService.EditablePost(c.UserContext(), userID, username, postID)
	if models.IsForbidden(err) {
		return c.Redirect(postURL(username, postID), fiber.StatusFound)
	}
	if err != nil {
		return err
	}

	data := &PostForm{Text: post.Text}
	if post.GroupID != nil {
		data.Group = fmt.Sprint(*post.GroupID)
	}
	return s.renderPostForm(c, newForm(data), post)
}

// PostEdit handles POST /:username/:post_id/edit/
func (s *Server) PostEdit(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return err
	}
	userID, _ := middleware.CurrentUserID(c)
	username := usernameParam(c)

	post, err := s.postService.EditablePost(c.UserContext(), userID, username, postID)
	if models.IsForbidden(err) {
		return c.Redirect(postURL(username, postID), fiber.StatusFound)
	}
	if err != nil {
		return err
	}

	data := &PostForm{}
	form := bindForm(c, data)
	upload := readUpload(c, "image", form)
	groupID, err := data.GroupID()
	if err != nil {
		form.Add("group", err.Error())
	}

	if form.Valid() {
		_, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
			UserID:     userID,
			Username:   username,
			PostID:     postID,
			Text:       data.Text,
			GroupID:    groupID,
			Image:      upload,
			ClearImage: data.ClearImage,
		})
		if err == nil {
			return c.Redirect(postURL(username, postID), fiber.StatusFound)
		}
		if models.IsForbidden(err) {
			return c.Redirect(postURL(username, postID), fiber.StatusFound)
		}
		if !form.AddError(err) {
			return err
		}
	}
	return s.renderPostForm(c, form, post)
}

// renderPostForm shows posts/new; a non-nil post switches it to edit mode.
func (s *Server) renderPostForm(c *fiber.Ctx, form *Form, post *models.Post) error {
	groups, err := s.groupService.List(c.UserContext())
	if err != nil {
		return err
	}
	bind := fiber.Map{
		"form":    form,
		"groups":  groups,
		"is_edit": post != nil,
	}
	if post != nil {
		bind["post"] = post
	}
	return s.render(c, "posts/new", bind)
}

// CommentPage handles GET /:username/:post_id/comment/ by sending the reader to the post.
func (s *Server) CommentPage(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return err
	}
	username := usernameParam(c)
	if _, err := s.postService.GetPost(c.UserContext(), username, postID); err != nil {
		return err
	}
	return c.Redirect(postURL(username, postID), fiber.StatusFound)
}

// AddComment handles POST /:username/:post_id/comment/
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return err
	}
	userID, _ := middleware.CurrentUserID(c)
	username := usernameParam(c)

	data := &CommentForm{}
	form := bindForm(c, data)
	if form.Valid() {
		_, err := s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
			AuthorID: userID,
			Username: username,
			PostID:   postID,
			Text:     data.Text,
		})
		if err == nil {
			return c.Redirect(postURL(username, postID), fiber.StatusFound)
		}
		if !form.AddError(err) {
			return err
		}
	}

	view, err := s.postService.GetPost(c.UserContext(), username, postID)
	if err != nil {
		return err
	}
	return s.renderPost(c, view, form)
}
