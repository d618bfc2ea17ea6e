package service

import (
	"context"
	"testing"

	"yatube/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupService_CachesList(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	repo := &groupRepoStub{groups: []models.Group{{ID: 1, Title: "Коты", Slug: "cats"}}}
	svc := NewGroupService(repo, rdb)

	for i := 0; i < 3; i++ {
		groups, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, groups, 1)
	}
	assert.Equal(t, 1, repo.listCalls)

	require.NoError(t, svc.Create(ctx, &models.Group{Title: "Авто", Slug: "cars"}))
	groups, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 2)
	assert.Equal(t, 2, repo.listCalls)

	g, err := svc.GetBySlug(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, "Коты", g.Title)
	assert.True(t, mr.Exists("groups:slug:cats"))

	_, err = svc.GetBySlug(ctx, "dogs")
	assert.True(t, models.IsNotFound(err))
}

func TestGroupService_CreateValidates(t *testing.T) {
	ctx := context.Background()
	repo := &groupRepoStub{}
	svc := NewGroupService(repo, nil)

	err := svc.Create(ctx, &models.Group{Title: "  ", Slug: "empty"})
	assert.True(t, models.IsValidation(err))

	err = svc.Create(ctx, &models.Group{Title: "Путешествия", Slug: "not a slug"})
	assert.True(t, models.IsValidation(err))
	assert.Empty(t, repo.groups)

	require.NoError(t, svc.Create(ctx, &models.Group{Title: " Путешествия ", Slug: "travel"}))
	require.Len(t, repo.groups, 1)
	assert.Equal(t, "Путешествия", repo.groups[0].Title)
}

func TestGroupService_ForgetDropsStaleEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	repo := &groupRepoStub{groups: []models.Group{{ID: 1, Title: "Коты", Slug: "cats"}}}
	svc := NewGroupService(repo, rdb)

	_, err := svc.GetBySlug(ctx, "cats")
	require.NoError(t, err)
	_, err = svc.List(ctx)
	require.NoError(t, err)

	// The row changes underneath the cache, as a fixture upsert does.
	repo.groups[0].Title = "Кошки"
	g, err := svc.GetBySlug(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, "Коты", g.Title)

	require.NoError(t, svc.Forget(ctx, repo.groups...))
	assert.False(t, mr.Exists("groups:slug:cats"))

	g, err = svc.GetBySlug(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, "Кошки", g.Title)
	groups, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Кошки", groups[0].Title)
	assert.Equal(t, 2, repo.listCalls)

	assert.NoError(t, NewGroupService(repo, nil).Forget(ctx, repo.groups...))
}
