package repository_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/descriptai/backend-go/internal/database/models"
	"github.com/descriptai/backend-go/internal/database/repository"
	"github.com/descriptai/backend-go/internal/testutil"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)

	user := &models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed",
	}
	require.NoError(t, repo.Create(user))
	assert.NotEqual(t, uuid.Nil, user.UserID)
	assert.Equal(t, models.StatusActive, user.DataStatus)

	byID, err := repo.FindByID(user.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byUsername, err := repo.FindByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, byUsername.UserID)

	byEmail, err := repo.FindByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, byEmail.UserID)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)

	require.NoError(t, repo.Create(&models.User{
		Username:     "bob",
		Email:        "bob@example.com",
		PasswordHash: "hashed",
	}))

	err := repo.Create(&models.User{
		Username:     "bob",
		Email:        "other@example.com",
		PasswordHash: "hashed",
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateUser)
}

func TestUserRepository_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)

	_, err := repo.FindByUsername("nobody")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_SoftDeletedInvisible(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)

	user := &models.User{
		Username:     "carol",
		Email:        "carol@example.com",
		PasswordHash: "hashed",
	}
	require.NoError(t, repo.Create(user))

	require.NoError(t, db.Model(user).Update("data_status", models.StatusDeleted).Error)

	_, err := repo.FindByID(user.UserID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
