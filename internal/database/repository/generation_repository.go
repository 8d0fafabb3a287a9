package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/descriptai/backend-go/internal/database/models"
)

// listLimit caps history responses to protect payload size. This is a
// bounded-result policy, not pagination.
const listLimit = 50

// GenerationRepository defines the interface for generation history
// persistence: upsert keyed on (user_id, product_name) and soft delete.
type GenerationRepository interface {
	ListActiveByUser(userID uuid.UUID) ([]models.Generation, error)
	Upsert(gen *models.Generation) (updated bool, err error)
	SoftDelete(userID, generationID uuid.UUID) error
}

type generationRepository struct {
	db *gorm.DB
}

// NewGenerationRepository creates a new generation repository instance
func NewGenerationRepository(db *gorm.DB) GenerationRepository {
	return &generationRepository{db: db}
}

func (r *generationRepository) ListActiveByUser(userID uuid.UUID) ([]models.Generation, error) {
	var generations []models.Generation
	err := r.db.
		Where("user_id = ? AND data_status = ?", userID, models.StatusActive).
		Order("created_at DESC").
		Limit(listLimit).
		Find(&generations).Error
	if err != nil {
		return nil, err
	}
	return generations, nil
}

// Upsert inserts gen, or overwrites the mutable fields of the active row with
// the same (user_id, product_name). Last write wins. The lookup and write run
// in one transaction; if a concurrent insert slips in between, the partial
// unique index rejects ours and a single retry lands on the update branch.
func (r *generationRepository) Upsert(gen *models.Generation) (bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		updated, err := r.tryUpsert(gen)
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt == 0 {
			continue
		}
		return updated, err
	}
	return false, gorm.ErrDuplicatedKey
}

func (r *generationRepository) tryUpsert(gen *models.Generation) (bool, error) {
	updated := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Generation
		err := tx.
			Where("user_id = ? AND product_name = ? AND data_status = ?",
				gen.UserID, gen.ProductName, models.StatusActive).
			First(&existing).Error

		if err == nil {
			now := time.Now().UTC()
			if err := tx.Model(&existing).Updates(map[string]interface{}{
				"product_category":  gen.ProductCategory,
				"target_audience":   gen.TargetAudience,
				"user_description":  gen.UserDescription,
				"target_language":   gen.TargetLanguage,
				"image_urls":        gen.ImageURLs,
				"final_description": gen.FinalDescription,
				"updated_at":        now,
			}).Error; err != nil {
				return err
			}
			gen.ID = existing.ID
			gen.CreatedAt = existing.CreatedAt
			gen.UpdatedAt = now
			updated = true
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(gen).Error
	})
	return updated, err
}

// SoftDelete flips the row's status to deleted. The row must be active and
// owned by userID; anything else reports not-found, deliberately hiding
// whether the id exists at all.
func (r *generationRepository) SoftDelete(userID, generationID uuid.UUID) error {
	now := time.Now().UTC()
	result := r.db.Model(&models.Generation{}).
		Where("id = ? AND user_id = ? AND data_status = ?", generationID, userID, models.StatusActive).
		Updates(map[string]interface{}{
			"data_status": models.StatusDeleted,
			"updated_at":  now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGenerationNotFound
	}
	return nil
}

// Repository errors
var (
	ErrGenerationNotFound = errors.New("generation not found or access denied")
)
