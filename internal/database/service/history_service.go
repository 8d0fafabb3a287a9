package service

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/descriptai/backend-go/internal/database/models"
	"github.com/descriptai/backend-go/internal/database/repository"
)

// HistoryService manages a user's saved generations: bounded listing, upsert
// keyed on product name, and soft delete.
type HistoryService interface {
	List(userID uuid.UUID) ([]models.Generation, error)
	Save(userID uuid.UUID, input SaveGenerationInput) (*SaveResult, error)
	Delete(userID, generationID uuid.UUID) error
}

// SaveGenerationInput carries the fields of a generation to persist.
// ProductName is the dedup key; everything else is overwritten on update.
type SaveGenerationInput struct {
	ProductName      string
	ProductCategory  string
	TargetAudience   string
	UserDescription  string
	TargetLanguage   string
	ImageURLs        []string
	FinalDescription string
}

// SaveResult reports the row id and whether an existing generation was
// overwritten. The Updated flag is the only way callers can tell create from
// update; there are no separate endpoints.
type SaveResult struct {
	ID      uuid.UUID
	Updated bool
}

type historyService struct {
	generationRepo repository.GenerationRepository
	logger         *slog.Logger
}

// NewHistoryService creates a new history service instance
func NewHistoryService(generationRepo repository.GenerationRepository, logger *slog.Logger) HistoryService {
	return &historyService{
		generationRepo: generationRepo,
		logger:         logger,
	}
}

func (s *historyService) List(userID uuid.UUID) ([]models.Generation, error) {
	generations, err := s.generationRepo.ListActiveByUser(userID)
	if err != nil {
		s.logger.Error("❌ [HistoryService] Failed to list generations", "user_id", userID, "error", err)
		return nil, err
	}

	s.logger.Debug("📖 [HistoryService] Listed generations", "user_id", userID, "count", len(generations))
	return generations, nil
}

func (s *historyService) Save(userID uuid.UUID, input SaveGenerationInput) (*SaveResult, error) {
	imageURLs := input.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}

	gen := &models.Generation{
		UserID:           userID,
		ProductName:      input.ProductName,
		ProductCategory:  input.ProductCategory,
		TargetAudience:   input.TargetAudience,
		UserDescription:  input.UserDescription,
		TargetLanguage:   input.TargetLanguage,
		ImageURLs:        pq.StringArray(imageURLs),
		FinalDescription: input.FinalDescription,
	}

	updated, err := s.generationRepo.Upsert(gen)
	if err != nil {
		s.logger.Error("❌ [HistoryService] Failed to save generation",
			"user_id", userID,
			"product_name", input.ProductName,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("💾 [HistoryService] Generation saved",
		"user_id", userID,
		"generation_id", gen.ID,
		"updated", updated,
	)
	return &SaveResult{ID: gen.ID, Updated: updated}, nil
}

func (s *historyService) Delete(userID, generationID uuid.UUID) error {
	if err := s.generationRepo.SoftDelete(userID, generationID); err != nil {
		if err != repository.ErrGenerationNotFound {
			s.logger.Error("❌ [HistoryService] Failed to delete generation",
				"user_id", userID,
				"generation_id", generationID,
				"error", err,
			)
		}
		return err
	}

	s.logger.Info("🗑️ [HistoryService] Generation deleted", "user_id", userID, "generation_id", generationID)
	return nil
}
