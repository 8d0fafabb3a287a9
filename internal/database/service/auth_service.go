package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/descriptai/backend-go/internal/config"
	"github.com/descriptai/backend-go/internal/database/models"
	"github.com/descriptai/backend-go/internal/database/repository"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// AuthService owns the session-token lifecycle: password hashing and
// verification, access/refresh token issuance, verification, refresh and
// revocation. Verification never panics and never leaks parser errors;
// anything wrong with a presented token comes back as ErrInvalidToken.
type AuthService interface {
	Register(username, email, password string) (*models.User, *TokenPair, error)
	Login(username, password string) (*models.User, *TokenPair, error)
	Refresh(refreshToken string) (string, error)
	Logout(refreshToken string)
	ValidateAccessToken(tokenString string) (*TokenClaims, error)
	GetUser(userID uuid.UUID) (*models.User, error)
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// TokenClaims is the identity extracted from a verified access token
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
}

type authService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtSecret        string
	cfg              *config.Config
	logger           *slog.Logger
}

// NewAuthService creates a new authentication service instance
func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	cfg *config.Config,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtSecret:        cfg.JWTSecret,
		cfg:              cfg,
		logger:           logger,
	}
}

func (s *authService) Register(username, email, password string) (*models.User, *TokenPair, error) {
	s.logger.Info("📝 [AuthService] Registration attempt", "username", username, "email", email)

	// Check if username already exists
	existingUser, err := s.userRepo.FindByUsername(username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		s.logger.Error("❌ [AuthService] Database error checking username", "error", err)
		return nil, nil, err
	}
	if existingUser != nil {
		s.logger.Warn("⚠️ [AuthService] Username already taken", "username", username)
		return nil, nil, ErrUsernameTaken
	}

	// Check if email already exists
	existingUser, err = s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		s.logger.Error("❌ [AuthService] Database error checking email", "error", err)
		return nil, nil, err
	}
	if existingUser != nil {
		s.logger.Warn("⚠️ [AuthService] Email already registered", "email", email)
		return nil, nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to hash password", "error", err)
		return nil, nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	// The unique indexes are the backstop for the check-then-insert window
	// above: a concurrent registration loses here instead of inserting twice.
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			s.logger.Warn("⚠️ [AuthService] Concurrent registration detected", "username", username)
			return nil, nil, ErrUsernameTaken
		}
		s.logger.Error("❌ [AuthService] Failed to create user", "error", err)
		return nil, nil, err
	}

	tokens, err := s.generateTokenPair(user.UserID, user.Username)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate tokens", "error", err)
		return nil, nil, err
	}

	s.logger.Info("✅ [AuthService] User registered successfully", "user_id", user.UserID)
	return user, tokens, nil
}

func (s *authService) Login(username, password string) (*models.User, *TokenPair, error) {
	s.logger.Info("🔐 [AuthService] Login attempt", "username", username)

	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("⚠️ [AuthService] User not found", "username", username)
			return nil, nil, ErrInvalidCredentials
		}
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("⚠️ [AuthService] Invalid password", "username", username)
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.generateTokenPair(user.UserID, user.Username)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate tokens", "error", err)
		return nil, nil, err
	}

	s.logger.Info("✅ [AuthService] User logged in successfully", "user_id", user.UserID)
	return user, tokens, nil
}

// Refresh verifies a refresh token and mints a new access token. There is no
// rotation: the presented refresh token stays valid until it expires or the
// user logs out.
func (s *authService) Refresh(refreshToken string) (string, error) {
	s.logger.Info("🔄 [AuthService] Token refresh attempt")

	userID, err := s.verifyRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("⚠️ [AuthService] Invalid refresh token")
		return "", ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", repository.ErrUserNotFound
		}
		return "", err
	}

	accessToken, err := s.generateAccessToken(user.UserID, user.Username)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate access token", "error", err)
		return "", err
	}

	s.logger.Info("✅ [AuthService] Token refreshed successfully", "user_id", user.UserID)
	return accessToken, nil
}

// Logout revokes every active refresh token of the user named by the
// presented token. Revocation is best-effort: a malformed, forged or expired
// token is logged and ignored so that client logout always succeeds, and in
// those cases no row is touched.
func (s *authService) Logout(refreshToken string) {
	s.logger.Info("👋 [AuthService] Logout attempt")

	claims, err := s.parseToken(refreshToken)
	if err != nil {
		s.logger.Warn("⚠️ [AuthService] Could not decode token for revocation, skipping", "error", err)
		return
	}

	userID, err := claimUserID(claims)
	if err != nil {
		s.logger.Warn("⚠️ [AuthService] Token carries no usable user id, skipping revocation")
		return
	}

	if err := s.refreshTokenRepo.RevokeAllForUser(userID); err != nil {
		s.logger.Error("❌ [AuthService] Failed to revoke tokens", "user_id", userID, "error", err)
		return
	}

	s.logger.Info("✅ [AuthService] All sessions revoked", "user_id", userID)
}

func (s *authService) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims["type"] != tokenTypeAccess {
		return nil, ErrInvalidToken
	}

	userID, err := claimUserID(claims)
	if err != nil {
		return nil, ErrInvalidToken
	}

	username, _ := claims["username"].(string)

	return &TokenClaims{UserID: userID, Username: username}, nil
}

func (s *authService) GetUser(userID uuid.UUID) (*models.User, error) {
	return s.userRepo.FindByID(userID)
}

// verifyRefreshToken checks the token cryptographically (signature, expiry,
// type) and then requires a live database row whose stored hash matches the
// presented token. Revoking the user's sessions therefore invalidates the
// token even before its embedded expiry.
func (s *authService) verifyRefreshToken(tokenString string) (uuid.UUID, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	if claims["type"] != tokenTypeRefresh {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := claimUserID(claims)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	if _, err := s.refreshTokenRepo.FindActive(userID, hashToken(tokenString)); err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return userID, nil
}

// parseToken verifies the HS256 signature and standard claims (including
// expiry) and returns the map claims. Any failure, including malformed
// input, comes back as a plain error.
func (s *authService) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func claimUserID(claims jwt.MapClaims) (uuid.UUID, error) {
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	return uuid.Parse(raw)
}

// generateTokenPair creates both access and refresh tokens
func (s *authService) generateTokenPair(userID uuid.UUID, username string) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(userID, username)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateAndStoreRefreshToken(userID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.cfg.AccessTokenTTL,
	}, nil
}

func (s *authService) generateAccessToken(userID uuid.UUID, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  userID.String(),
		"username": username,
		"type":     tokenTypeAccess,
		"iat":      now.Unix(),
		"exp":      now.Add(time.Duration(s.cfg.AccessTokenTTL) * time.Second).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// generateAndStoreRefreshToken signs a refresh JWT and persists a row holding
// its SHA-256 digest. The raw token is returned to the caller and never
// stored.
func (s *authService) generateAndStoreRefreshToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.cfg.RefreshTokenTTL) * time.Second)
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"type":    tokenTypeRefresh,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	refreshToken := &models.RefreshToken{
		UserID:    userID,
		TokenHash: hashToken(tokenString),
		ExpiresAt: expiresAt,
	}

	if err := s.refreshTokenRepo.Create(refreshToken); err != nil {
		return "", err
	}

	return tokenString, nil
}

func hashToken(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(sum[:])
}

// Service errors
var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
