package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shopclip/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	if cfg.RateLimit.PerIP > 0 {
		v1.Use(RateLimitMiddleware(
			NewIPRateLimiter(cfg.RateLimit.PerIP, time.Minute),
			"Trop de requêtes. Réessayez dans une minute.",
		))
	}
	{
		v1.POST("/scrape", handler.Scrape)

		auth := v1.Group("/auth")
		{
			auth.POST("/signup", limitedBy(cfg.RateLimit.Signup, time.Hour,
				"Trop de tentatives d'inscription. Réessayez dans une heure."), handler.Signup)
			auth.POST("/login", limitedBy(cfg.RateLimit.Login, 15*time.Minute,
				"Trop de tentatives de connexion. Réessayez dans 15 minutes."), handler.Login)
			auth.POST("/logout", handler.Logout)
			auth.GET("/verify", AuthMiddleware(handler.auth), handler.Verify)
			auth.POST("/change-password", AuthMiddleware(handler.auth), handler.ChangePassword)
		}

		projects := v1.Group("/projects")
		projects.Use(AuthMiddleware(handler.auth))
		{
			projects.GET("", handler.ListProjects)
			projects.POST("", handler.CreateProject)
			projects.GET("/:id", handler.GetProject)
			projects.PUT("/:id", handler.UpdateProject)
			projects.DELETE("/:id", handler.DeleteProject)
			projects.POST("/:id/refresh", handler.RefreshProject)
			projects.GET("/:id/products", handler.ListProducts)
		}
	}

	return router
}

// limitedBy returns a per-IP limiter middleware, or a pass-through when
// events is not positive.
func limitedBy(events int, window time.Duration, message string) gin.HandlerFunc {
	if events <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return RateLimitMiddleware(NewIPRateLimiter(events, window), message)
}
