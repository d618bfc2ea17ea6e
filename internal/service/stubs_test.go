package service

import (
	"context"
	"testing"

	"yatube/internal/models"
	"yatube/internal/repository"

	"github.com/stretchr/testify/assert"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn      func(context.Context, *models.Post) error
	updateFn      func(context.Context, *models.Post) error
	getByIDFn     func(context.Context, uint) (*models.Post, error)
	getByAuthorFn func(context.Context, string, uint) (*models.Post, error)
	listFn        func(context.Context, repository.PostFilter, int, int) ([]models.Post, error)
	countFn       func(context.Context, repository.PostFilter) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByAuthor(ctx context.Context, username string, id uint) (*models.Post, error) {
	return s.getByAuthorFn(ctx, username, id)
}
func (s *postRepoStub) List(ctx context.Context, f repository.PostFilter, limit, offset int) ([]models.Post, error) {
	return s.listFn(ctx, f, limit, offset)
}
func (s *postRepoStub) Count(ctx context.Context, f repository.PostFilter) (int64, error) {
	return s.countFn(ctx, f)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		updateFn:  func(context.Context, *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) { return nil, models.NewNotFoundError("Post", id) },
		getByAuthorFn: func(_ context.Context, _ string, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		},
		listFn:  func(context.Context, repository.PostFilter, int, int) ([]models.Post, error) { return nil, nil },
		countFn: func(context.Context, repository.PostFilter) (int64, error) { return 0, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository backed by a map.
type userRepoStub struct {
	byName   map[string]*models.User
	createFn func(context.Context, *models.User) error
}

func newUserRepoStub(users ...*models.User) *userRepoStub {
	s := &userRepoStub{byName: map[string]*models.User{}}
	for _, u := range users {
		s.byName[u.Username] = u
	}
	return s
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, user)
	}
	if _, ok := s.byName[user.Username]; ok {
		return models.NewValidationError("A user with that username already exists.")
	}
	user.ID = uint(len(s.byName) + 1)
	s.byName[user.Username] = user
	return nil
}
func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range s.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, models.NewNotFoundError("User", id)
}
func (s *userRepoStub) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := s.byName[username]; ok {
		return u, nil
	}
	return nil, models.NewNotFoundError("User", username)
}

// groupRepoStub is a stub for repository.GroupRepository.
type groupRepoStub struct {
	groups    []models.Group
	listCalls int
}

func (s *groupRepoStub) Create(_ context.Context, g *models.Group) error {
	g.ID = uint(len(s.groups) + 1)
	s.groups = append(s.groups, *g)
	return nil
}
func (s *groupRepoStub) GetByID(_ context.Context, id uint) (*models.Group, error) {
	for i := range s.groups {
		if s.groups[i].ID == id {
			return &s.groups[i], nil
		}
	}
	return nil, models.NewNotFoundError("Group", id)
}
func (s *groupRepoStub) GetBySlug(_ context.Context, slug string) (*models.Group, error) {
	for i := range s.groups {
		if s.groups[i].Slug == slug {
			return &s.groups[i], nil
		}
	}
	return nil, models.NewNotFoundError("Group", slug)
}
func (s *groupRepoStub) List(context.Context) ([]models.Group, error) {
	s.listCalls++
	return append([]models.Group(nil), s.groups...), nil
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	created []models.Comment
}

func (s *commentRepoStub) Create(_ context.Context, c *models.Comment) error {
	c.ID = uint(len(s.created) + 1)
	s.created = append(s.created, *c)
	return nil
}
func (s *commentRepoStub) ListByPost(_ context.Context, postID uint) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range s.created {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

// followRepoStub is an in-memory repository.FollowRepository.
type followRepoStub struct {
	edges   map[[2]uint]bool
	creates int
}

func newFollowRepoStub() *followRepoStub {
	return &followRepoStub{edges: map[[2]uint]bool{}}
}

func (s *followRepoStub) Create(_ context.Context, f *models.Follow) error {
	key := [2]uint{f.UserID, f.AuthorID}
	if s.edges[key] {
		return models.NewValidationError("Already following this author")
	}
	s.creates++
	s.edges[key] = true
	return nil
}
func (s *followRepoStub) Delete(_ context.Context, userID, authorID uint) (bool, error) {
	key := [2]uint{userID, authorID}
	existed := s.edges[key]
	delete(s.edges, key)
	return existed, nil
}
func (s *followRepoStub) Exists(_ context.Context, userID, authorID uint) (bool, error) {
	return s.edges[[2]uint{userID, authorID}], nil
}

// pageCacheStub counts Clear calls.
type pageCacheStub struct {
	clears int
}

func (p *pageCacheStub) Clear(context.Context) error {
	p.clears++
	return nil
}

func assertValidationError(t *testing.T, err error, field string) {
	t.Helper()
	var appErr *models.AppError
	if assert.ErrorAs(t, err, &appErr) {
		assert.Equal(t, models.CodeValidation, appErr.Code)
		assert.Equal(t, field, appErr.Field)
	}
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assert.True(t, models.HasCode(err, models.CodeUnauthorized), "expected UNAUTHORIZED, got %v", err)
}
