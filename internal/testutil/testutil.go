package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/descriptai/backend-go/internal/config"
	"github.com/descriptai/backend-go/internal/database/models"
)

// TestConfig returns a config suitable for unit tests. Bcrypt runs at the
// minimum cost so password hashing does not dominate test time.
func TestConfig() *config.Config {
	return &config.Config{
		AppEnv:             "test",
		LogLevel:           slog.LevelError,
		JWTSecret:          "test-secret-key",
		AccessTokenTTL:     900,
		RefreshTokenTTL:    2592000,
		BcryptCost:         bcrypt.MinCost,
		GeminiAPIKey:       "test-api-key",
		GeminiModel:        "gemini-2.5-flash-lite",
		GeminiTimeout:      5,
		DailyGenerateLimit: 200,
	}
}

// TestLogger returns a logger that discards all output
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetupTestDB creates an in-memory SQLite database with the full schema.
// SQLite supports the same partial unique index Postgres uses, so the upsert
// concurrency backstop is exercised here too.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.RefreshToken{}, &models.Generation{})
	require.NoError(t, err)

	err = db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_generations_user_product_active
		 ON generations (user_id, product_name) WHERE data_status = 'A'`,
	).Error
	require.NoError(t, err)

	return db
}
