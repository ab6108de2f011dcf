package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/highlights-keeper/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	// Session resolution needs the store, so it stays off /health
	api := router.Group("/api")
	api.Use(cfg.Sessions.Handler())

	authController := NewAuthController(cfg.Auth, cfg.Sessions, cfg.RateLimiter)
	api.GET("/csrf", authController.CSRFToken)
	api.POST("/auth/register", authController.Register)
	api.POST("/auth/login", authController.Login)
	api.POST("/auth/logout", authController.Logout)
	api.GET("/auth/session", authController.Session)

	protected := api.Group("")
	protected.Use(cfg.Sessions.RequireSession())

	books := NewBooksController(cfg.Books, cfg.Imports, cfg.Kindle)
	protected.GET("/books", books.ListBooks)
	protected.GET("/books/count", books.CountBooks)
	protected.DELETE("/books", books.RemoveBook)
	protected.POST("/books/import", books.Import)
	protected.POST("/books/import/kindle", books.ImportKindle)

	upgrades := NewUpgradeController(cfg.Upgrades)
	protected.POST("/upgrade", upgrades.Upgrade)

	return router
}
