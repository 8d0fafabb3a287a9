package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/descriptai/backend-go/internal/config"
)

// RateLimiter bounds how many generation calls a client may make per UTC day.
// The public generation endpoints have no authenticated identity, so the key
// is the client IP.
type RateLimiter interface {
	// Allow reports whether the caller identified by key may proceed, and
	// counts the attempt. It fails open: a Redis error is logged and the
	// request is admitted.
	Allow(ctx context.Context, key string) (bool, error)

	// Close closes the Redis connection
	Close() error
}

type redisRateLimiter struct {
	client *redis.Client
	limit  int64
	logger *slog.Logger
}

// NewRateLimiter creates a new Redis-based rate limiter
func NewRateLimiter(cfg *config.Config, logger *slog.Logger) (RateLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       int(cfg.RedisDatabase),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("❌ [RateLimiter] Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("✅ [RateLimiter] Connected to Redis",
		"host", cfg.RedisHost,
		"port", cfg.RedisPort,
	)

	return &redisRateLimiter{
		client: client,
		limit:  cfg.DailyGenerateLimit,
		logger: logger,
	}, nil
}

// NewRateLimiterWithClient creates a rate limiter around an existing Redis
// client (for testing).
func NewRateLimiterWithClient(client *redis.Client, limit int64, logger *slog.Logger) RateLimiter {
	return &redisRateLimiter{
		client: client,
		limit:  limit,
		logger: logger,
	}
}

// dailyKey generates the Redis key for a client's daily call count
// Format: rate:daily:{key}:{YYYY-MM-DD}
func dailyKey(key string) string {
	today := time.Now().UTC().Format("2006-01-02")
	return fmt.Sprintf("rate:daily:%s:%s", key, today)
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	// Zero or negative limit means unlimited
	if r.limit <= 0 {
		return true, nil
	}

	redisKey := dailyKey(key)

	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)

	// Expire at midnight UTC so the counter resets with the day
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	pipe.Expire(ctx, redisKey, midnight.Sub(now))

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("❌ [RateLimiter] Failed to count request", "key", key, "error", err)
		return true, err
	}

	return incr.Val() <= r.limit, nil
}

func (r *redisRateLimiter) Close() error {
	return r.client.Close()
}

// RateLimit is the gin middleware enforcing the daily cap on the generation
// endpoints.
func RateLimit(limiter RateLimiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Fail open, already logged by the limiter
			c.Next()
			return
		}
		if !allowed {
			logger.Warn("⚠️ [RateLimiter] Daily limit reached", "client_ip", c.ClientIP())
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Daily generation limit reached. Please try again tomorrow."})
			c.Abort()
			return
		}
		c.Next()
	}
}

// NoOpRateLimiter is a rate limiter that always allows requests
// Used when Redis is not available
type NoOpRateLimiter struct {
	logger *slog.Logger
}

// NewNoOpRateLimiter creates a no-op rate limiter
func NewNoOpRateLimiter(logger *slog.Logger) RateLimiter {
	logger.Warn("⚠️ [RateLimiter] Using no-op rate limiter - rate limiting is disabled")
	return &NoOpRateLimiter{logger: logger}
}

func (r *NoOpRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (r *NoOpRateLimiter) Close() error {
	return nil
}
