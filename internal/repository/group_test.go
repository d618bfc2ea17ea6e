package repository

import (
	"context"
	"testing"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Group{Title: "Коты", Slug: "cats"}))
	require.NoError(t, repo.Create(ctx, &models.Group{Title: "Авто", Slug: "cars"}))
	assert.True(t, models.IsValidation(repo.Create(ctx, &models.Group{Title: "Dup", Slug: "cats"})))

	g, err := repo.GetBySlug(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, "Коты", g.Title)

	byID, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "cats", byID.Slug)

	_, err = repo.GetBySlug(ctx, "dogs")
	assert.True(t, models.IsNotFound(err))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "cars", all[0].Slug)
}
