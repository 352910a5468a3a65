package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/prepforge/mockexam-backend/internal/config"
	"github.com/prepforge/mockexam-backend/internal/handler"
	"github.com/prepforge/mockexam-backend/internal/middleware"
	"github.com/prepforge/mockexam-backend/internal/response"
	"github.com/prepforge/mockexam-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Test     *handler.TestHandler
	Analysis *handler.AnalysisHandler
	Setting  *handler.SettingHandler
	WS       *handler.WSHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for generation: AI calls are expensive (5 per minute per IP).
	generateLimiter := middleware.NewRateLimiter(5, time.Minute)

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", handlers.Auth.Login)
	}

	// ─── 2. API Group (JWT) ────────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))
	{
		api.POST("/tests/generate", generateLimiter.Middleware(), handlers.Test.Generate)
		api.GET("/tests", handlers.Test.List)
		api.GET("/tests/:test_id", handlers.Test.Get)
		api.DELETE("/tests/:test_id", handlers.Test.Delete)
		api.POST("/tests/:test_id/retest", handlers.Test.Retest)
		api.GET("/tests/:test_id/state", handlers.Test.State)
		api.GET("/tests/:test_id/export", handlers.Test.Export)

		api.POST("/tests/:test_id/analysis", handlers.Analysis.Analyze)
		api.POST("/tests/:test_id/analysis/:section", handlers.Analysis.AnalyzeSection)
		api.GET("/tests/:test_id/analysis", handlers.Analysis.Get)

		api.GET("/settings", handlers.Setting.GetSettings)
		api.PUT("/settings", handlers.Setting.UpdateSettings)

		api.GET("/system/metrics", handlers.System.SystemMetricsSSE)
	}

	// ─── 3. WebSocket Group (WS Auth) ──────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/tests/:test_id/stream", handlers.WS.AttemptStream)
	}

	return router
}
