package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/descriptai/backend-go/internal/database/models"
	"github.com/descriptai/backend-go/internal/database/repository"
	"github.com/descriptai/backend-go/internal/database/service"
	"github.com/descriptai/backend-go/internal/testutil"
)

func newAuthService(t *testing.T) (service.AuthService, *testutil.MockUserRepository, *testutil.MockRefreshTokenRepository) {
	t.Helper()
	userRepo := new(testutil.MockUserRepository)
	tokenRepo := new(testutil.MockRefreshTokenRepository)
	svc := service.NewAuthService(userRepo, tokenRepo, testutil.TestConfig(), testutil.TestLogger())
	return svc, userRepo, tokenRepo
}

func hashedPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_Register(t *testing.T) {
	svc, userRepo, tokenRepo := newAuthService(t)

	userRepo.On("FindByUsername", "alice").Return(nil, repository.ErrUserNotFound)
	userRepo.On("FindByEmail", "alice@example.com").Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.User).UserID = uuid.New()
	}).Return(nil)
	tokenRepo.On("Create", mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	user, tokens, err := svc.Register("alice", "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)

	// The stored password is a hash, never the plaintext
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))

	userRepo.AssertExpectations(t)
	tokenRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUsernameTaken(t *testing.T) {
	svc, userRepo, _ := newAuthService(t)

	userRepo.On("FindByUsername", "alice").Return(&models.User{Username: "alice"}, nil)

	_, _, err := svc.Register("alice", "new@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
	userRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_RegisterEmailTaken(t *testing.T) {
	svc, userRepo, _ := newAuthService(t)

	userRepo.On("FindByUsername", "newname").Return(nil, repository.ErrUserNotFound)
	userRepo.On("FindByEmail", "alice@example.com").Return(&models.User{Email: "alice@example.com"}, nil)

	_, _, err := svc.Register("newname", "alice@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrEmailAlreadyExists)
}

func TestAuthService_RegisterConcurrentDuplicate(t *testing.T) {
	svc, userRepo, _ := newAuthService(t)

	// Both pre-checks miss but the insert loses to a concurrent registration
	userRepo.On("FindByUsername", "alice").Return(nil, repository.ErrUserNotFound)
	userRepo.On("FindByEmail", "alice@example.com").Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", mock.Anything).Return(repository.ErrDuplicateUser)

	_, _, err := svc.Register("alice", "alice@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestAuthService_Login(t *testing.T) {
	svc, userRepo, tokenRepo := newAuthService(t)
	userID := uuid.New()

	userRepo.On("FindByUsername", "alice").Return(&models.User{
		UserID:       userID,
		Username:     "alice",
		PasswordHash: hashedPassword(t, "password123"),
	}, nil)
	tokenRepo.On("Create", mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	user, tokens, err := svc.Login("alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, userID, user.UserID)

	claims, err := svc.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc, userRepo, _ := newAuthService(t)

	userRepo.On("FindByUsername", "alice").Return(&models.User{
		Username:     "alice",
		PasswordHash: hashedPassword(t, "password123"),
	}, nil)

	_, _, err := svc.Login("alice", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthService_LoginUnknownUser(t *testing.T) {
	svc, userRepo, _ := newAuthService(t)

	userRepo.On("FindByUsername", "ghost").Return(nil, repository.ErrUserNotFound)

	_, _, err := svc.Login("ghost", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthService_ValidateAccessTokenRejectsRefreshToken(t *testing.T) {
	svc, userRepo, tokenRepo := newAuthService(t)

	userRepo.On("FindByUsername", "alice").Return(&models.User{
		UserID:       uuid.New(),
		Username:     "alice",
		PasswordHash: hashedPassword(t, "password123"),
	}, nil)
	tokenRepo.On("Create", mock.Anything).Return(nil)

	_, tokens, err := svc.Login("alice", "password123")
	require.NoError(t, err)

	// A refresh token must never open a protected endpoint
	_, err = svc.ValidateAccessToken(tokens.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestAuthService_ValidateAccessTokenGarbage(t *testing.T) {
	svc, _, _ := newAuthService(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, service.ErrInvalidToken)
	}
}

func TestAuthService_ExpiredAccessTokenInvalid(t *testing.T) {
	userRepo := new(testutil.MockUserRepository)
	tokenRepo := new(testutil.MockRefreshTokenRepository)

	// Negative TTL mints a token that is expired on arrival
	cfg := testutil.TestConfig()
	cfg.AccessTokenTTL = -60
	svc := service.NewAuthService(userRepo, tokenRepo, cfg, testutil.TestLogger())

	userRepo.On("FindByUsername", "alice").Return(&models.User{
		UserID:       uuid.New(),
		Username:     "alice",
		PasswordHash: hashedPassword(t, "password123"),
	}, nil)
	tokenRepo.On("Create", mock.Anything).Return(nil)

	_, tokens, err := svc.Login("alice", "password123")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(tokens.AccessToken)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestAuthService_Refresh(t *testing.T) {
	svc, userRepo, tokenRepo := newAuthService(t)
	userID := uuid.New()

	var storedHash string
	userRepo.On("FindByUsername", "alice").Return(&models.User{
		UserID:       userID,
		Username:     "alice",
		PasswordHash: hashedPassword(t, "password123"),
	}, nil)
	userRepo.On("FindByID", userID).Return(&models.User{UserID: userID, Username: "alice"}, nil)
	tokenRepo.On("Create", mock.AnythingOfType("*models.RefreshToken")).Run(func(args mock.Arguments) {
		storedHash = args.Get(0).(*models.RefreshToken).TokenHash
	}).Return(nil)

	_, tokens, err := svc.Login("alice", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, storedHash)

	// The lookup must be keyed on the digest of the presented token
	tokenRepo.On("FindActive", userID, storedHash).Return(&models.RefreshToken{
		UserID:    userID,
		TokenHash: storedHash,
	}, nil)

	accessToken, err := svc.Refresh(tokens.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestAuthService_RefreshRevokedToken(t *testing.T) {
	svc, userRepo, tokenRepo := newAuthService(t)
	userID := uuid.New()

	userRepo.On("FindByUsername", "alice").Return(&models.User{
		UserID:       userID,
		Username:     "alice",
		PasswordHash: hashedPassword(t, "password123"),
	}, nil)
	tokenRepo.On("Create", mock.Anything).Return(nil)

	_, tokens, err := svc.Login("alice", "password123")
	require.NoError(t, err)

	// No live row: the signature is fine but the session is gone
	tokenRepo.On("FindActive", userID, mock.Anything).Return(nil, repository.ErrTokenNotFound)

	_, err = svc.Refresh(tokens.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestAuthService_RefreshRejectsAccessToken(t *testing.T) {
	svc, userRepo, tokenRepo := newAuthService(t)

	userRepo.On("FindByUsername", "alice").Return(&models.User{
		UserID:       uuid.New(),
		Username:     "alice",
		PasswordHash: hashedPassword(t, "password123"),
	}, nil)
	tokenRepo.On("Create", mock.Anything).Return(nil)

	_, tokens, err := svc.Login("alice", "password123")
	require.NoError(t, err)

	_, err = svc.Refresh(tokens.AccessToken)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
	tokenRepo.AssertNotCalled(t, "FindActive", mock.Anything, mock.Anything)
}

func TestAuthService_Logout(t *testing.T) {
	svc, userRepo, tokenRepo := newAuthService(t)
	userID := uuid.New()

	userRepo.On("FindByUsername", "alice").Return(&models.User{
		UserID:       userID,
		Username:     "alice",
		PasswordHash: hashedPassword(t, "password123"),
	}, nil)
	tokenRepo.On("Create", mock.Anything).Return(nil)
	tokenRepo.On("RevokeAllForUser", userID).Return(nil)

	_, tokens, err := svc.Login("alice", "password123")
	require.NoError(t, err)

	svc.Logout(tokens.RefreshToken)
	tokenRepo.AssertCalled(t, "RevokeAllForUser", userID)
}

func TestAuthService_LogoutGarbageTokenMutatesNothing(t *testing.T) {
	svc, _, tokenRepo := newAuthService(t)

	svc.Logout("not-a-token")
	tokenRepo.AssertNotCalled(t, "RevokeAllForUser", mock.Anything)
}
