package repository

import (
	"context"
	"log/slog"

	"yatube/internal/models"

	"gorm.io/gorm"
)

// GroupRepository defines the interface for group data operations
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
	List(ctx context.Context) ([]models.Group, error)
}

type groupRepository struct {
	db *gorm.DB
	tracked
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db, tracked: newTracked("groups")}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) (err error) {
	ctx, done := r.start(ctx, "Create")
	defer func() { done(err) }()

	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("A group with that slug already exists.")
		}
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", slog.String("slug", group.Slug))
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (_ *models.Group, err error) {
	ctx, done := r.start(ctx, "GetByID")
	defer func() { done(err) }()

	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, notFoundOr(err, "Group", id)
	}
	return &group, nil
}

func (r *groupRepository) GetBySlug(ctx context.Context, slug string) (_ *models.Group, err error) {
	ctx, done := r.start(ctx, "GetBySlug")
	defer func() { done(err) }()

	var group models.Group
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, notFoundOr(err, "Group", slug)
	}
	return &group, nil
}

// List returns all groups ordered by title.
func (r *groupRepository) List(ctx context.Context) (_ []models.Group, err error) {
	ctx, done := r.start(ctx, "List")
	defer func() { done(err) }()

	var groups []models.Group
	if err := r.db.WithContext(ctx).Order("title ASC").Order("id ASC").Find(&groups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}
