package service

import (
	"context"
	"strings"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
)

const maxCommentLen = 2000

type CommentService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

type AddCommentInput struct {
	AuthorID uint
	Username string
	PostID   uint
	Text     string
}

func NewCommentService(posts repository.PostRepository, comments repository.CommentRepository) *CommentService {
	return &CommentService{posts: posts, comments: comments}
}

// AddComment attaches a comment to the post identified by (Username, PostID).
// A missing post yields NOT_FOUND.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if in.AuthorID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	post, err := s.posts.GetByAuthor(ctx, in.Username, in.PostID)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewFieldError("text", "This field is required.")
	}
	if len([]rune(text)) > maxCommentLen {
		return nil, models.NewFieldError("text", "Comment is too long.")
	}

	comment := &models.Comment{PostID: post.ID, AuthorID: in.AuthorID, Text: text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.CommentsCreated.Inc()
	return comment, nil
}
