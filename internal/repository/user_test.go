package repository

import (
	"context"
	"regexp"
	"testing"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByUsername(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		username     string
		mockBehavior func()
		wantNotFound bool
	}{
		{
			name:     "Found",
			username: "leo",
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs("leo", 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(1, "leo"))
			},
		},
		{
			name:     "Not Found",
			username: "ghost",
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs("ghost", 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))
			},
			wantNotFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByUsername(ctx, tt.username)
			if tt.wantNotFound {
				assert.True(t, models.IsNotFound(err))
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.username, user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "leo", Password: "hash"}))
	err := repo.Create(ctx, &models.User{Username: "leo", Password: "hash"})
	assert.True(t, models.IsValidation(err))

	got, err := repo.GetByUsername(ctx, "leo")
	require.NoError(t, err)
	byID, err := repo.GetByID(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, "leo", byID.Username)
}
