package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/descriptai/backend-go/internal/database/models"
)

// RefreshTokenRepository defines the interface for refresh token operations.
// Token rows are append-plus-revoke only: nothing here deletes a row, and the
// single mutation is setting revoked_at.
type RefreshTokenRepository interface {
	Create(token *models.RefreshToken) error
	FindActive(userID uuid.UUID, tokenHash string) (*models.RefreshToken, error)
	RevokeAllForUser(userID uuid.UUID) error
	CountActiveForUser(userID uuid.UUID) (int64, error)
}

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new refresh token repository instance
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(token *models.RefreshToken) error {
	return r.db.Create(token).Error
}

// FindActive returns the stored row matching the presented token's hash,
// provided it is neither revoked nor expired.
func (r *refreshTokenRepository) FindActive(userID uuid.UUID, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.
		Where("user_id = ? AND token_hash = ?", userID, tokenHash).
		Where("revoked_at IS NULL AND expires_at > ?", time.Now().UTC()).
		Order("issued_at DESC").
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

// RevokeAllForUser marks every non-revoked token of the user as revoked.
// Revocation is intentionally coarse: a logout ends all of the user's
// sessions at once.
func (r *refreshTokenRepository) RevokeAllForUser(userID uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Updates(map[string]interface{}{
			"revoked_at": now,
			"updated_at": now,
		}).Error
}

func (r *refreshTokenRepository) CountActiveForUser(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now().UTC()).
		Count(&count).Error
	return count, err
}

// Repository errors
var (
	ErrTokenNotFound = errors.New("token not found")
)
