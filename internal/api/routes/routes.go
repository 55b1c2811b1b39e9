package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"cvforge/internal/api/handlers"
	"cvforge/internal/api/middleware"
	"cvforge/internal/background"
	"cvforge/internal/config"
	"cvforge/internal/logging"
	"cvforge/internal/workflow"
	"cvforge/pkg/utils"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, orchestrator *workflow.Orchestrator, taskManager background.TaskManager, redisClient *utils.RedisClient) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	// Model-backed endpoints get a longer deadline than the rest
	e.Use(middleware.SelectiveTimeoutConfig(cfg.Server.ReadTimeout, 2*time.Minute))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(taskManager, redisClient))
		health.GET("/live", handlers.LivenessHandler)

		// Logging system monitoring
		health.GET("/logging", func(c echo.Context) error {
			logger := logging.GetGlobalLogger()
			logger.Info("Logging health check requested", map[string]interface{}{
				"request_id": c.Response().Header().Get("X-Request-ID"),
				"test_log":   "This log should appear in Betterstack if configured correctly",
			})

			return c.JSON(http.StatusOK, map[string]interface{}{
				"status":   "ok",
				"message":  "Logging test completed - check your Betterstack dashboard",
				"adapters": "Logging system is active",
			})
		})
	}

	// Status route
	e.GET("/status", handlers.StatusHandler)

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		// CV analysis and optimization routes
		cv := v1.Group("/cv")
		{
			cv.POST("/analyze", handlers.AnalyzeHandler(cfg, orchestrator))
			cv.POST("/optimize", handlers.OptimizeHandler(cfg, orchestrator))
			cv.POST("/optimize/async", handlers.OptimizeAsyncHandler(cfg, orchestrator, taskManager))
			cv.POST("/optimize/section", handlers.SectionOptimizeHandler(cfg, orchestrator))
			cv.POST("/export", handlers.ExportHandler(cfg))
		}

		// Cover letter routes
		coverLetter := v1.Group("/cover-letter")
		{
			coverLetter.POST("/generate", handlers.CoverLetterHandler(cfg, orchestrator))
		}

		// Background task monitoring
		v1.GET("/tasks/:id", handlers.TaskStatusHandler(taskManager, redisClient))

		// Provider introspection
		v1.GET("/providers", handlers.ProvidersHandler(cfg))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"service": "CVForge",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
