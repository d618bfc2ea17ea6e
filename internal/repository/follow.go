package repository

import (
	"context"
	"log/slog"

	"yatube/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow graph operations
type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	// Delete removes the edge and reports whether one existed.
	Delete(ctx context.Context, userID, authorID uint) (bool, error)
	Exists(ctx context.Context, userID, authorID uint) (bool, error)
}

type followRepository struct {
	db *gorm.DB
	tracked
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db, tracked: newTracked("follows")}
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) (err error) {
	ctx, done := r.start(ctx, "Create")
	defer func() { done(err) }()

	if err := r.db.WithContext(ctx).Omit("User", "Author").Create(follow).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Already following this author")
		}
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", slog.Any("user_id", follow.UserID), slog.Any("author_id", follow.AuthorID))
	return nil
}

func (r *followRepository) Delete(ctx context.Context, userID, authorID uint) (_ bool, err error) {
	ctx, done := r.start(ctx, "Delete")
	defer func() { done(err) }()

	res := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		r.log.LogWrite(ctx, "delete", slog.Any("user_id", userID), slog.Any("author_id", authorID))
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, userID, authorID uint) (_ bool, err error) {
	ctx, done := r.start(ctx, "Exists")
	defer func() { done(err) }()

	var n int64
	err = r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}
