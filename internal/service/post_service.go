// Package service implements the business rules behind the web handlers.
package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/pagination"
	"yatube/internal/repository"
	"yatube/internal/storage"
	"yatube/internal/validation"
)

// Page sizes of the post listings.
const (
	IndexPageSize   = 10
	DefaultPageSize = 5
)

const (
	maxPostTextLen = 10000
	imageURLExpiry = 24 * time.Hour
)

// PageCache is the rendered-page cache cleared when a new post is published.
type PageCache interface {
	Clear(ctx context.Context) error
}

// ImageUpload is an uploaded file as received from a form.
type ImageUpload struct {
	Filename string
	Data     []byte
}

type PostService struct {
	posts     repository.PostRepository
	users     repository.UserRepository
	comments  repository.CommentRepository
	follows   repository.FollowRepository
	groups    *GroupService
	images    storage.Storage
	pageCache PageCache
	logger    *slog.Logger
}

type CreatePostInput struct {
	AuthorID uint
	Text     string
	GroupID  *uint
	Image    *ImageUpload
}

type UpdatePostInput struct {
	UserID     uint
	Username   string
	PostID     uint
	Text       string
	GroupID    *uint
	Image      *ImageUpload
	ClearImage bool
}

// ProfileView is what the profile page shows about an author.
type ProfileView struct {
	Author    *models.User
	Page      *pagination.Page[models.Post]
	PostCount int64
	Following bool
}

// PostView is a single post with its author's post count and comments.
type PostView struct {
	Post      *models.Post
	Author    *models.User
	PostCount int64
	Comments  []models.Comment
}

func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	comments repository.CommentRepository,
	follows repository.FollowRepository,
	groups *GroupService,
	images storage.Storage,
	pageCache PageCache,
	logger *slog.Logger,
) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		posts:     posts,
		users:     users,
		comments:  comments,
		follows:   follows,
		groups:    groups,
		images:    images,
		pageCache: pageCache,
		logger:    logger,
	}
}

// Index lists every post, newest first.
func (s *PostService) Index(ctx context.Context, rawPage string) (*pagination.Page[models.Post], error) {
	return s.page(ctx, repository.PostFilter{}, rawPage, IndexPageSize)
}

// GroupPosts lists the posts of the group with the given slug.
func (s *PostService) GroupPosts(ctx context.Context, slug, rawPage string) (*models.Group, *pagination.Page[models.Post], error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	page, err := s.page(ctx, repository.PostFilter{GroupID: group.ID}, rawPage, DefaultPageSize)
	if err != nil {
		return nil, nil, err
	}
	return group, page, nil
}

// Feed lists posts of the authors viewerID follows.
func (s *PostService) Feed(ctx context.Context, viewerID uint, rawPage string) (*pagination.Page[models.Post], error) {
	if viewerID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.page(ctx, repository.PostFilter{FollowerID: viewerID}, rawPage, DefaultPageSize)
}

// Profile loads an author's page; viewerID is 0 for anonymous visitors.
func (s *PostService) Profile(ctx context.Context, username string, viewerID uint, rawPage string) (*ProfileView, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	page, err := s.page(ctx, repository.PostFilter{AuthorID: author.ID}, rawPage, DefaultPageSize)
	if err != nil {
		return nil, err
	}
	following := false
	if viewerID != 0 {
		if following, err = s.follows.Exists(ctx, viewerID, author.ID); err != nil {
			return nil, err
		}
	}
	return &ProfileView{
		Author:    author,
		Page:      page,
		PostCount: page.Paginator.Count,
		Following: following,
	}, nil
}

// GetPost loads a post only when it belongs to username.
func (s *PostService) GetPost(ctx context.Context, username string, postID uint) (*PostView, error) {
	post, err := s.posts.GetByAuthor(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	count, err := s.posts.Count(ctx, repository.PostFilter{AuthorID: post.AuthorID})
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &PostView{Post: post, Author: &post.Author, PostCount: count, Comments: comments}, nil
}

// CreatePost publishes a post and drops every cached page.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.AuthorID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	text, err := cleanPostText(in.Text)
	if err != nil {
		return nil, err
	}
	if err := s.checkGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}

	post := &models.Post{Text: text, AuthorID: in.AuthorID, GroupID: in.GroupID}
	if in.Image != nil {
		key, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = key
	}

	if err := s.posts.Create(ctx, post); err != nil {
		s.deleteImage(ctx, post.Image)
		return nil, err
	}
	observability.PostsCreated.Inc()

	if s.pageCache != nil {
		if err := s.pageCache.Clear(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to clear page cache", slog.String("error", err.Error()))
		} else {
			observability.PageCacheClears.Inc()
		}
	}
	return post, nil
}

// EditablePost loads a post for its author. Other users get a FORBIDDEN error.
func (s *PostService) EditablePost(ctx context.Context, userID uint, username string, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByAuthor(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	if userID == 0 || post.AuthorID != userID {
		return post, models.NewForbiddenError("Only the author can edit this post")
	}
	return post, nil
}

// UpdatePost changes text, group and image of a post owned by in.UserID.
// A new upload replaces the stored image; ClearImage removes it.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.EditablePost(ctx, in.UserID, in.Username, in.PostID)
	if err != nil {
		return post, err
	}
	text, err := cleanPostText(in.Text)
	if err != nil {
		return post, err
	}
	if err := s.checkGroup(ctx, in.GroupID); err != nil {
		return post, err
	}

	oldImage := post.Image
	newImage := oldImage
	switch {
	case in.Image != nil:
		key, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return post, err
		}
		newImage = key
	case in.ClearImage:
		newImage = ""
	}

	updated := *post
	updated.Text = text
	updated.GroupID = in.GroupID
	updated.Image = newImage
	if err := s.posts.Update(ctx, &updated); err != nil {
		if newImage != oldImage {
			s.deleteImage(ctx, newImage)
		}
		return post, err
	}
	if newImage != oldImage {
		s.deleteImage(ctx, oldImage)
	}
	return &updated, nil
}

// ImageURL resolves a stored image key into a URL for templates.
func (s *PostService) ImageURL(ctx context.Context, key string) string {
	if key == "" || s.images == nil {
		return ""
	}
	u, err := s.images.PresignGet(ctx, key, imageURLExpiry)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to presign image", slog.String("key", key), slog.String("error", err.Error()))
		return ""
	}
	return u
}

func (s *PostService) page(ctx context.Context, filter repository.PostFilter, rawPage string, perPage int) (*pagination.Page[models.Post], error) {
	count, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	p := pagination.New(count, perPage)
	number := p.Number(rawPage)
	limit, offset := p.Bounds(number)
	items, err := s.posts.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(items, number, p), nil
}

func (s *PostService) checkGroup(ctx context.Context, groupID *uint) error {
	if groupID == nil {
		return nil
	}
	if _, err := s.groups.GetByID(ctx, *groupID); err != nil {
		if models.IsNotFound(err) {
			return models.NewFieldError("group", "Select a valid choice. That choice is not one of the available choices.")
		}
		return err
	}
	return nil
}

func (s *PostService) storeImage(ctx context.Context, up *ImageUpload) (string, error) {
	if s.images == nil {
		return "", models.NewInternalError(fmt.Errorf("image storage is not configured"))
	}
	info, err := validation.ValidateImage(up.Data)
	if err != nil {
		return "", models.NewFieldError("image", err.Error())
	}
	key := storage.NewImageKey(info.Ext)
	_, err = s.images.Put(ctx, key, bytes.NewReader(up.Data), storage.PutObjectOptions{
		Size:        int64(len(up.Data)),
		ContentType: info.ContentType,
		Metadata:    map[string]string{"original-name": up.Filename},
	})
	if err != nil {
		return "", models.NewInternalError(fmt.Errorf("store image: %w", err))
	}
	observability.ImagesStored.WithLabelValues(s.images.Backend()).Inc()
	return key, nil
}

func (s *PostService) deleteImage(ctx context.Context, key string) {
	if key == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete image", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func cleanPostText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", models.NewFieldError("text", "This field is required.")
	}
	if utf8.RuneCountInString(text) > maxPostTextLen {
		return "", models.NewFieldError("text", fmt.Sprintf("Ensure this value has at most %d characters.", maxPostTextLen))
	}
	return text, nil
}
