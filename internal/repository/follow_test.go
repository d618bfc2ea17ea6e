package repository

import (
	"context"
	"regexp"
	"testing"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	leo := testutil.CreateUser(t, db, "leo")
	anna := testutil.CreateUser(t, db, "anna")

	exists, err := repo.Exists(ctx, anna.ID, leo.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(ctx, &models.Follow{UserID: anna.ID, AuthorID: leo.ID}))
	assert.True(t, models.IsValidation(repo.Create(ctx, &models.Follow{UserID: anna.ID, AuthorID: leo.ID})))

	exists, err = repo.Exists(ctx, anna.ID, leo.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, leo.ID, anna.ID)
	require.NoError(t, err)
	assert.False(t, exists, "edges are directed")

	deleted, err := repo.Delete(ctx, anna.ID, leo.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, anna.ID, leo.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFollowRepository_CreatePostgresUniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "follows"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Follow{UserID: 1, AuthorID: 2})
	assert.True(t, models.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
