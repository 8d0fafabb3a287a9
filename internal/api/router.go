package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/descriptai/backend-go/internal/handler"
	"github.com/descriptai/backend-go/internal/middleware"
)

// SetupRouter configures all API routes
func SetupRouter(
	authHandler *handler.AuthHandler,
	generationHandler *handler.GenerationHandler,
	historyHandler *handler.HistoryHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter middleware.RateLimiter,
	logger *slog.Logger,
) *gin.Engine {
	router := gin.Default()

	// Behind a known proxy this should list it explicitly; nil disables the
	// trust entirely so ClientIP falls back to the peer address.
	_ = router.SetTrustedProxies(nil)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
	}

	api := router.Group("/api")
	{
		rateLimit := middleware.RateLimit(rateLimiter, logger)
		api.POST("/generate-description", rateLimit, generationHandler.Generate)
		api.POST("/translate-description", rateLimit, generationHandler.Translate)

		generations := api.Group("/generations", authMiddleware.RequireAuth())
		{
			generations.GET("", historyHandler.List)
			generations.POST("/save", historyHandler.Save)
			generations.DELETE("/:generation_id", historyHandler.Delete)
		}
	}

	return router
}
