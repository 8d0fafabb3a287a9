package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Generation is one saved product description. ProductName is the natural
// dedup key: at most one active generation may exist per (user_id,
// product_name), enforced by the upsert path plus a partial unique index.
type Generation struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index" json:"-"`
	ProductName      string         `gorm:"not null" json:"product_name"`
	ProductCategory  string         `json:"product_category"`
	TargetAudience   string         `json:"target_audience"`
	UserDescription  string         `gorm:"type:text" json:"user_description"`
	TargetLanguage   string         `json:"target_language"`
	ImageURLs        pq.StringArray `gorm:"column:image_urls;type:text[]" json:"image_urls"`
	FinalDescription string         `gorm:"type:text;not null" json:"final_description"`
	DataStatus       DataStatus     `gorm:"type:char(1);not null;default:A;index" json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// TableName overrides the table name
func (Generation) TableName() string {
	return "generations"
}

func (g *Generation) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.DataStatus == "" {
		g.DataStatus = StatusActive
	}
	return nil
}
