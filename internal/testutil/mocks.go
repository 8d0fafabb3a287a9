package testutil

import (
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/descriptai/backend-go/internal/database/models"
)

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(id uuid.UUID) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockRefreshTokenRepository is a mock implementation of
// repository.RefreshTokenRepository
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(token *models.RefreshToken) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindActive(userID uuid.UUID, tokenHash string) (*models.RefreshToken, error) {
	args := m.Called(userID, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) RevokeAllForUser(userID uuid.UUID) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) CountActiveForUser(userID uuid.UUID) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockGenerationRepository is a mock implementation of
// repository.GenerationRepository
type MockGenerationRepository struct {
	mock.Mock
}

func (m *MockGenerationRepository) ListActiveByUser(userID uuid.UUID) ([]models.Generation, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Generation), args.Error(1)
}

func (m *MockGenerationRepository) Upsert(gen *models.Generation) (bool, error) {
	args := m.Called(gen)
	return args.Bool(0), args.Error(1)
}

func (m *MockGenerationRepository) SoftDelete(userID, generationID uuid.UUID) error {
	args := m.Called(userID, generationID)
	return args.Error(0)
}
