package repository

import (
	"context"
	"log/slog"

	"yatube/internal/models"

	"gorm.io/gorm"
)

// PostFilter narrows a post listing. Zero fields are ignored.
type PostFilter struct {
	GroupID uint
	AuthorID uint
	// FollowerID limits posts to authors followed by this user.
	FollowerID uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// GetByAuthor loads a post only when it belongs to the named author.
	GetByAuthor(ctx context.Context, username string, id uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]models.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
}

type postRepository struct {
	db *gorm.DB
	tracked
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, tracked: newTracked("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, done := r.start(ctx, "Create")
	defer func() { done(err) }()

	if err := r.db.WithContext(ctx).Omit("Author", "Group").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", slog.Any("post_id", post.ID), slog.Any("author_id", post.AuthorID))
	return nil
}

// Update writes the editable columns of post.
func (r *postRepository) Update(ctx context.Context, post *models.Post) (err error) {
	ctx, done := r.start(ctx, "Update")
	defer func() { done(err) }()

	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	r.log.LogWrite(ctx, "update", slog.Any("post_id", post.ID))
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (_ *models.Post, err error) {
	ctx, done := r.start(ctx, "GetByID")
	defer func() { done(err) }()

	var post models.Post
	if err := r.withRelations(ctx).First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetByAuthor(ctx context.Context, username string, id uint) (_ *models.Post, err error) {
	ctx, done := r.start(ctx, "GetByAuthor")
	defer func() { done(err) }()

	var post models.Post
	err = r.withRelations(ctx).
		Joins("JOIN users author ON author.id = posts.author_id").
		Where("posts.id = ? AND author.username = ?", id, username).
		First(&post).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

// List returns posts newest first.
func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) (_ []models.Post, err error) {
	ctx, done := r.start(ctx, "List")
	defer func() { done(err) }()

	var posts []models.Post
	err = r.filtered(r.withRelations(ctx), filter).
		Order("posts.pub_date DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (_ int64, err error) {
	ctx, done := r.start(ctx, "Count")
	defer func() { done(err) }()

	var n int64
	if err := r.filtered(r.db.WithContext(ctx).Model(&models.Post{}), filter).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *postRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Author").Preload("Group")
}

func (r *postRepository) filtered(q *gorm.DB, filter PostFilter) *gorm.DB {
	if filter.GroupID != 0 {
		q = q.Where("posts.group_id = ?", filter.GroupID)
	}
	if filter.AuthorID != 0 {
		q = q.Where("posts.author_id = ?", filter.AuthorID)
	}
	if filter.FollowerID != 0 {
		q = q.Where("posts.author_id IN (?)",
			r.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", filter.FollowerID))
	}
	return q
}
