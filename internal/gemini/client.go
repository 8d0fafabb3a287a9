package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/descriptai/backend-go/internal/config"
	"github.com/descriptai/backend-go/internal/worker"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"

	maxImages    = 5
	maxLanguages = 3

	systemInstruction = "You are an expert marketing assistant. Create well-crafted, clean, and " +
		"professional product descriptions that are focused and concise but comprehensive. " +
		"Provide the content in clean paragraphs without markdown syntax (no # headers, " +
		"no * bullet points). Use plain text formatting with clear line breaks between " +
		"sections. Avoid generic phrases and focus on the specific product details provided."
)

// Client calls the generative-language REST API for description generation
// and translation. BaseURL is overridable for tests.
type Client struct {
	BaseURL    string
	httpClient *http.Client
	apiKey     string
	model      string
	pool       *worker.Pool
	logger     *slog.Logger
}

// GenerationInput holds the product details a prompt is built from. Empty
// fields are simply left out of the prompt.
type GenerationInput struct {
	ProductName     string
	ProductCategory string
	TargetAudience  string
	UserDescription string
	TargetLanguage  string
}

// NewClient creates a Gemini API client
func NewClient(cfg *config.Config, pool *worker.Pool, logger *slog.Logger) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.GeminiTimeout) * time.Second,
		},
		apiKey: cfg.GeminiAPIKey,
		model:  cfg.GeminiModel,
		pool:   pool,
		logger: logger,
	}
}

// ===== wire types =====

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateDescription builds a prompt from the product details and asks the
// model for a description, attaching up to five images when provided. Images
// may arrive as plain base64 or as data URLs.
func (c *Client) GenerateDescription(ctx context.Context, input GenerationInput, images []string) (string, error) {
	prompt := buildPrompt(input)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	if len(images) > maxImages {
		return "", ErrTooManyImages
	}

	parts := make([]part, 0, len(images)+2)
	if len(images) > 0 {
		parts = append(parts, part{Text: languageInstruction("English")})
	}
	parts = append(parts, part{Text: prompt})

	for _, img := range images {
		data, err := decodeImage(img)
		if err != nil {
			return "", err
		}
		parts = append(parts, part{InlineData: data})
	}

	c.logger.Info("🤖 [Gemini] Generating description",
		"model", c.model,
		"image_count", len(images),
	)

	return c.generateContent(ctx, parts)
}

// TranslateDescription translates the description into each requested
// language (at most three), fanning the per-language calls out on the worker
// pool. A language the model returns nothing for yields a placeholder
// failure string; a provider error fails the whole call.
func (c *Client) TranslateDescription(ctx context.Context, description string, languages []string) (map[string]string, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}

	langs := make([]string, 0, len(languages))
	for _, lang := range languages {
		if trimmed := strings.TrimSpace(lang); trimmed != "" {
			langs = append(langs, trimmed)
		}
	}
	if len(langs) == 0 {
		return nil, ErrNoLanguages
	}
	if len(langs) > maxLanguages {
		return nil, ErrTooManyLanguages
	}

	type result struct {
		lang string
		text string
		err  error
	}
	results := make(chan result, len(langs))

	for _, lang := range langs {
		lang := lang
		c.pool.Submit(func(_ context.Context) {
			text, err := c.generateContent(ctx, []part{{Text: translatePrompt(lang, description)}})
			results <- result{lang: lang, text: strings.TrimSpace(text), err: err}
		})
	}

	translations := make(map[string]string, len(langs))
	var firstErr error
	for range langs {
		r := <-results
		switch {
		case errors.Is(r.err, ErrEmptyResponse):
			// The model answered but produced nothing for this language
			translations[r.lang] = fmt.Sprintf("Translation to %s failed", r.lang)
		case r.err != nil:
			if firstErr == nil {
				firstErr = r.err
			}
		default:
			translations[r.lang] = r.text
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return translations, nil
}

// generateContent performs one :generateContent call and extracts the first
// candidate's text.
func (c *Client) generateContent(ctx context.Context, parts []part) (string, error) {
	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: parts}}})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("❌ [Gemini] Request failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.mapAPIError(resp.StatusCode, respBody)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode model response: %w", err)
	}

	text := extractText(parsed)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// mapAPIError folds provider failures into the four user-facing categories.
func (c *Client) mapAPIError(status int, body []byte) error {
	var parsed generateResponse
	message := ""
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
		message = parsed.Error.Message
	}

	c.logger.Error("❌ [Gemini] API error",
		"status", status,
		"message", message,
	)

	switch {
	case status >= http.StatusInternalServerError:
		return ErrServiceUnavailable
	case status == http.StatusTooManyRequests:
		return ErrQuotaExceeded
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrInvalidAPIKey
	default:
		return fmt.Errorf("failed to generate description: %s (status %d)", message, status)
	}
}

func extractText(resp generateResponse) string {
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		for _, p := range candidate.Content.Parts {
			sb.WriteString(p.Text)
		}
		break // only the first candidate
	}
	return strings.TrimSpace(sb.String())
}

// buildPrompt assembles the prompt text from the product details, joining
// present fields with " | " and appending the marketing instructions.
func buildPrompt(input GenerationInput) string {
	fields := make([]string, 0, 4)
	if input.ProductName != "" {
		fields = append(fields, "Product Name: "+input.ProductName)
	}
	if input.ProductCategory != "" {
		fields = append(fields, "Category: "+input.ProductCategory)
	}
	if input.TargetAudience != "" {
		fields = append(fields, "Target Audience: "+input.TargetAudience)
	}
	if input.UserDescription != "" {
		fields = append(fields, "Description: "+input.UserDescription)
	}
	if len(fields) == 0 {
		return ""
	}

	textInput := strings.Join(fields, " | ")

	langInstruction := ""
	if input.TargetLanguage != "" && !strings.EqualFold(input.TargetLanguage, "english") {
		langInstruction = fmt.Sprintf("Provide the response in %s. ", input.TargetLanguage)
	}

	return fmt.Sprintf(
		"%s %sBased on this information: %s. "+
			"Include brand name, product category, target audience, key features, benefits, and "+
			"usage instructions if mentioned. Keep it concise but comprehensive.",
		systemInstruction, langInstruction, textInput,
	)
}

func languageInstruction(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = "English"
	}
	return fmt.Sprintf(
		"You are an assistant that must respond in %s. Write naturally and correctly in %s. Do not switch languages.",
		lang, lang,
	)
}

func translatePrompt(lang, description string) string {
	return fmt.Sprintf(
		"%s\n\nTranslate the following product description. "+
			"Maintain the same professional tone, structure, and formatting. "+
			"Do not add or remove any information. Just translate the text accurately.\n\n"+
			"Product Description:\n%s\n\nTranslated to %s:",
		languageInstruction(lang), description, lang,
	)
}

// Client errors. The first three mirror the provider's failure categories;
// the rest are input validation.
var (
	ErrServiceUnavailable = errors.New("AI service is temporarily unavailable. Please try again in a moment")
	ErrQuotaExceeded      = errors.New("API quota exceeded. Please try again later")
	ErrInvalidAPIKey      = errors.New("API key is invalid or expired. Please check your configuration")
	ErrEmptyResponse      = errors.New("no response from AI model. Please try again")

	ErrEmptyPrompt      = errors.New("at least one product detail is required")
	ErrTooManyImages    = errors.New("maximum 5 images allowed")
	ErrEmptyDescription = errors.New("description is required")
	ErrNoLanguages      = errors.New("at least one target language is required")
	ErrTooManyLanguages = errors.New("maximum 3 languages allowed")
)
