package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/descriptai/backend-go/internal/api"
	"github.com/descriptai/backend-go/internal/config"
	"github.com/descriptai/backend-go/internal/database"
	"github.com/descriptai/backend-go/internal/database/repository"
	"github.com/descriptai/backend-go/internal/database/service"
	"github.com/descriptai/backend-go/internal/gemini"
	"github.com/descriptai/backend-go/internal/handler"
	"github.com/descriptai/backend-go/internal/logger"
	"github.com/descriptai/backend-go/internal/middleware"
	"github.com/descriptai/backend-go/internal/worker"
)

func main() {
	// .env is optional, container deployments inject real env vars
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	log := logger.New(cfg)

	log.Info("🚀 [Server] Starting DescriptAI backend",
		"env", cfg.AppEnv,
		"port", cfg.ApiServicePort,
	)

	if err := database.ConnectDatabase(cfg, log); err != nil {
		log.Error("❌ [Server] Database initialization failed", "error", err)
		os.Exit(1)
	}

	db := database.GetDatabase()

	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	generationRepo := repository.NewGenerationRepository(db)

	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg, log)
	historyService := service.NewHistoryService(generationRepo, log)

	pool := worker.NewPool(log)
	defer pool.Shutdown(10 * time.Second)

	geminiClient := gemini.NewClient(cfg, pool, log)

	rateLimiter, err := middleware.NewRateLimiter(cfg, log)
	if err != nil {
		log.Warn("⚠️ [Server] Redis unavailable, generation endpoints run unthrottled", "error", err)
		rateLimiter = middleware.NewNoOpRateLimiter(log)
	}
	defer rateLimiter.Close()

	authHandler := handler.NewAuthHandler(authService, log)
	generationHandler := handler.NewGenerationHandler(geminiClient, log)
	historyHandler := handler.NewHistoryHandler(historyService, log)
	authMiddleware := middleware.NewAuthMiddleware(authService, log)

	router := api.SetupRouter(authHandler, generationHandler, historyHandler, authMiddleware, rateLimiter, log)

	log.Info("✅ [Server] Listening", "port", cfg.ApiServicePort)
	if err := router.Run(":" + cfg.ApiServicePort); err != nil {
		log.Error("❌ [Server] Server stopped", "error", err)
		os.Exit(1)
	}
}
