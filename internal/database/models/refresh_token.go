package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshToken stores refresh tokens for authentication. Only a one-way hash
// of the signed token is persisted; the raw value leaves the process exactly
// once, in the login/register response. A row is valid while revoked_at is
// null and expires_at lies in the future. Rows are never deleted, only
// revoked.
type RefreshToken struct {
	TokenID   uuid.UUID  `gorm:"column:token_id;type:uuid;primaryKey" json:"token_id"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	TokenHash string     `gorm:"not null;index" json:"-"`
	IssuedAt  time.Time  `gorm:"column:issued_at;autoCreateTime" json:"issued_at"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName overrides the table name
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.TokenID == uuid.Nil {
		t.TokenID = uuid.New()
	}
	return nil
}
