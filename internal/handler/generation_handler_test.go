package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGemini(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server.URL
}

func geminiReply(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": text}},
				}},
			},
		})
	}
}

func geminiFailure(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": status, "message": "upstream failure"},
		})
	}
}

func TestGenerateDescriptionEndpoint(t *testing.T) {
	router := setupRouter(t, fakeGemini(t, geminiReply("A great keyboard.")))

	// Public endpoint, no token needed
	w := doJSON(router, http.MethodPost, "/api/generate-description", "", gin.H{
		"product_name":     "Keyboard",
		"product_category": "Electronics",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "A great keyboard.", parseBody(t, w)["description"])
}

func TestGenerateDescriptionEmptyInput(t *testing.T) {
	router := setupRouter(t, fakeGemini(t, geminiReply("unused")))

	w := doJSON(router, http.MethodPost, "/api/generate-description", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateDescriptionUpstreamErrors(t *testing.T) {
	cases := []struct {
		name     string
		upstream int
		want     int
	}{
		{"provider down", http.StatusInternalServerError, http.StatusBadGateway},
		{"quota exhausted", http.StatusTooManyRequests, http.StatusTooManyRequests},
		{"bad api key", http.StatusUnauthorized, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := setupRouter(t, fakeGemini(t, geminiFailure(tc.upstream)))

			w := doJSON(router, http.MethodPost, "/api/generate-description", "", gin.H{
				"product_name": "Keyboard",
			})
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestTranslateDescriptionEndpoint(t *testing.T) {
	router := setupRouter(t, fakeGemini(t, geminiReply("Bonjour le clavier.")))

	w := doJSON(router, http.MethodPost, "/api/translate-description", "", gin.H{
		"description": "Hello keyboard.",
		"languages":   []string{"French"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	translations := parseBody(t, w)["translations"].(map[string]interface{})
	assert.Equal(t, "Bonjour le clavier.", translations["French"])
}

func TestTranslateDescriptionValidation(t *testing.T) {
	router := setupRouter(t, fakeGemini(t, geminiReply("unused")))

	// Missing fields fail request binding
	w := doJSON(router, http.MethodPost, "/api/translate-description", "", gin.H{
		"description": "Hello.",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Too many languages fail the client's own validation
	w = doJSON(router, http.MethodPost, "/api/translate-description", "", gin.H{
		"description": "Hello.",
		"languages":   []string{"A", "B", "C", "D"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
