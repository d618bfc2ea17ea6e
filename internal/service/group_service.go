package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"yatube/internal/cache"
	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"

	"github.com/redis/go-redis/v9"
)

// GroupService serves group lookups through the Redis cache.
type GroupService struct {
	repo repository.GroupRepository
	rdb  *redis.Client
}

// NewGroupService creates a group service; rdb may be nil.
func NewGroupService(repo repository.GroupRepository, rdb *redis.Client) *GroupService {
	return &GroupService{repo: repo, rdb: rdb}
}

func (s *GroupService) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	err := cache.Aside(ctx, s.rdb, cache.GroupBySlugKey(slug), &group, cache.GroupsTTL, func() error {
		g, err := s.repo.GetBySlug(ctx, slug)
		if err != nil {
			return err
		}
		group = *g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *GroupService) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all groups for the post form.
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := cache.Aside(ctx, s.rdb, cache.GroupsAllKey(), &groups, cache.GroupsTTL, func() error {
		var err error
		groups, err = s.repo.List(ctx)
		return err
	})
	return groups, err
}

// Create stores a new group and drops the cached group list so the post form sees it at once.
func (s *GroupService) Create(ctx context.Context, group *models.Group) error {
	group.Title = strings.TrimSpace(group.Title)
	if group.Title == "" || utf8.RuneCountInString(group.Title) > 200 {
		return models.NewFieldError("title", "title must be 1-200 characters")
	}
	if err := validation.ValidateSlug(group.Slug); err != nil {
		return models.NewFieldError("slug", err.Error())
	}
	if err := s.repo.Create(ctx, group); err != nil {
		return err
	}
	return cache.Invalidate(ctx, s.rdb, cache.GroupsAllKey())
}

// Forget drops the cached entries of groups changed outside this service,
// such as fixture upserts, along with the cached group list.
func (s *GroupService) Forget(ctx context.Context, groups ...models.Group) error {
	keys := make([]string, 0, len(groups)+1)
	keys = append(keys, cache.GroupsAllKey())
	for _, g := range groups {
		keys = append(keys, cache.GroupBySlugKey(g.Slug))
	}
	return cache.Invalidate(ctx, s.rdb, keys...)
}
