package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/descriptai/backend-go/internal/gemini"
)

// GenerationHandler handles the AI generation HTTP requests. These endpoints
// are public and rate-limited per client IP.
type GenerationHandler struct {
	client *gemini.Client
	logger *slog.Logger
}

// NewGenerationHandler creates a new generation handler instance
func NewGenerationHandler(client *gemini.Client, logger *slog.Logger) *GenerationHandler {
	return &GenerationHandler{
		client: client,
		logger: logger,
	}
}

// GenerateRequest represents the description generation payload. Clients may
// send a single image under "image" or several under "images"; both forms are
// accepted and merged.
type GenerateRequest struct {
	ProductName     string   `json:"product_name"`
	ProductCategory string   `json:"product_category"`
	TargetAudience  string   `json:"target_audience"`
	UserDescription string   `json:"description"`
	TargetLanguage  string   `json:"target_language"`
	Image           string   `json:"image"`
	Images          []string `json:"images"`
}

// TranslateRequest represents the translation payload
type TranslateRequest struct {
	Description string   `json:"description" binding:"required"`
	Languages   []string `json:"languages" binding:"required"`
}

// Generate handles POST /api/generate-description
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	images := req.Images
	if req.Image != "" {
		images = append(images, req.Image)
	}

	input := gemini.GenerationInput{
		ProductName:     req.ProductName,
		ProductCategory: req.ProductCategory,
		TargetAudience:  req.TargetAudience,
		UserDescription: req.UserDescription,
		TargetLanguage:  req.TargetLanguage,
	}

	description, err := h.client.GenerateDescription(c.Request.Context(), input, images)
	if err != nil {
		h.handleProviderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"description": description})
}

// Translate handles POST /api/translate-description
func (h *GenerationHandler) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Description and languages are required"})
		return
	}

	translations, err := h.client.TranslateDescription(c.Request.Context(), req.Description, req.Languages)
	if err != nil {
		h.handleProviderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"translations": translations})
}

func (h *GenerationHandler) handleProviderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gemini.ErrEmptyPrompt),
		errors.Is(err, gemini.ErrTooManyImages),
		errors.Is(err, gemini.ErrInvalidImage),
		errors.Is(err, gemini.ErrUnsupportedImage),
		errors.Is(err, gemini.ErrEmptyDescription),
		errors.Is(err, gemini.ErrNoLanguages),
		errors.Is(err, gemini.ErrTooManyLanguages):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gemini.ErrQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, gemini.ErrServiceUnavailable), errors.Is(err, gemini.ErrEmptyResponse):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, gemini.ErrInvalidAPIKey):
		h.logger.Error("❌ [GenerationHandler] Provider rejected API key")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		h.logger.Error("❌ [GenerationHandler] Generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate description"})
	}
}
