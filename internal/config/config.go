package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppEnv             string
	LogLevel           slog.Level
	ApiServicePort     string
	PostgreSQLHost     string
	PostgreSQLPort     int64
	PostgreSQLUser     string
	PostgreSQLPassword string
	PostgreSQLDatabase string
	JWTSecret          string
	AccessTokenTTL     int64 // seconds
	RefreshTokenTTL    int64 // seconds
	BcryptCost         int
	GeminiAPIKey       string
	GeminiModel        string
	GeminiTimeout      int64 // seconds
	RedisHost          string
	RedisPort          int64
	RedisPassword      string
	RedisDatabase      int64
	DailyGenerateLimit int64
}

func LoadConfig() *Config {
	return &Config{
		AppEnv:             getEnv("APP_ENV", "development"),                // Default development
		LogLevel:           getLogLevel(),                                   // Default INFO
		ApiServicePort:     getEnv("API_SERVICE_PORT", "8080"),              // Default 8080
		PostgreSQLHost:     getEnv("POSTGRESQL_HOST", "db"),                 // Default db
		PostgreSQLPort:     getEnvAsInt64("POSTGRESQL_PORT", 5432),          // Default 5432
		PostgreSQLUser:     getEnv("POSTGRESQL_USER", "postgres"),           // Default user
		PostgreSQLPassword: getEnv("POSTGRESQL_PASSWORD", ""),               // No default password
		PostgreSQLDatabase: getEnv("POSTGRESQL_DATABASE", "descriptai_db"),  // Default database name
		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production"), // Default secret key
		AccessTokenTTL:     getEnvAsInt64("ACCESS_TOKEN_TTL", 900),          // Default 15 minutes
		RefreshTokenTTL:    getEnvAsInt64("REFRESH_TOKEN_TTL", 2592000),     // Default 30 days
		BcryptCost:         int(getEnvAsInt64("BCRYPT_COST", 12)),           // Default cost 12
		GeminiAPIKey:       getGeminiAPIKey(),                               // GEMINI_API_KEY or GOOGLE_API_KEY
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"), // Default model
		GeminiTimeout:      getEnvAsInt64("GEMINI_TIMEOUT", 120),            // Default 120 seconds
		RedisHost:          getEnv("REDIS_HOST", "redis"),                   // Default redis
		RedisPort:          getEnvAsInt64("REDIS_PORT", 6379),               // Default 6379
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),                    // Default empty
		RedisDatabase:      getEnvAsInt64("REDIS_DATABASE", 0),              // Default 0
		DailyGenerateLimit: getEnvAsInt64("DAILY_GENERATE_LIMIT", 200),      // Default 200 requests/day
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return fallback
}

func getLogLevel() slog.Level {
	levelStr := getEnv("LOG_LEVEL", "INFO")

	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getGeminiAPIKey accepts either variable name, matching the Google SDK
// convention.
func getGeminiAPIKey() string {
	if key := getEnv("GEMINI_API_KEY", ""); key != "" {
		return key
	}
	return getEnv("GOOGLE_API_KEY", "")
}
