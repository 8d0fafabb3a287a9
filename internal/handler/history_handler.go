package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/descriptai/backend-go/internal/database/repository"
	"github.com/descriptai/backend-go/internal/database/service"
)

// HistoryHandler handles the saved-generation HTTP requests (all protected)
type HistoryHandler struct {
	service service.HistoryService
	logger  *slog.Logger
}

// NewHistoryHandler creates a new history handler instance
func NewHistoryHandler(service service.HistoryService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		logger:  logger,
	}
}

// SaveRequest represents the save-generation payload
type SaveRequest struct {
	ProductName      string   `json:"product_name" binding:"required"`
	ProductCategory  string   `json:"product_category"`
	TargetAudience   string   `json:"target_audience"`
	UserDescription  string   `json:"description"`
	TargetLanguage   string   `json:"target_language"`
	ImageURLs        []string `json:"image_urls"`
	FinalDescription string   `json:"final_description" binding:"required"`
}

// List handles GET /api/generations
func (h *HistoryHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	generations, err := h.service.List(userID)
	if err != nil {
		h.logger.Error("❌ [HistoryHandler] Failed to list generations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load generations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"generations": generations})
}

// Save handles POST /api/generations/save. Saving the same product name again
// overwrites the previous entry; the status code tells the two apart.
func (h *HistoryHandler) Save(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product name and final description are required"})
		return
	}

	targetLanguage := strings.TrimSpace(req.TargetLanguage)
	if targetLanguage == "" {
		targetLanguage = "English"
	}

	result, err := h.service.Save(userID, service.SaveGenerationInput{
		ProductName:      strings.TrimSpace(req.ProductName),
		ProductCategory:  strings.TrimSpace(req.ProductCategory),
		TargetAudience:   strings.TrimSpace(req.TargetAudience),
		UserDescription:  req.UserDescription,
		TargetLanguage:   targetLanguage,
		ImageURLs:        req.ImageURLs,
		FinalDescription: req.FinalDescription,
	})
	if err != nil {
		h.logger.Error("❌ [HistoryHandler] Failed to save generation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save generation"})
		return
	}

	status := http.StatusCreated
	message := "Generation saved successfully"
	if result.Updated {
		status = http.StatusOK
		message = "Generation updated successfully"
	}

	c.JSON(status, gin.H{
		"message": message,
		"id":      result.ID,
		"updated": result.Updated,
	})
}

// Delete handles DELETE /api/generations/:generation_id. A malformed id gets
// the same 404 as someone else's generation; the response never reveals
// whether the row exists.
func (h *HistoryHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	generationID, err := uuid.Parse(c.Param("generation_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Generation not found or access denied"})
		return
	}

	if err := h.service.Delete(userID, generationID); err != nil {
		if errors.Is(err, repository.ErrGenerationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Generation not found or access denied"})
			return
		}
		h.logger.Error("❌ [HistoryHandler] Failed to delete generation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete generation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Generation deleted successfully"})
}
