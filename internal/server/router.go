package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"contactbook/internal/auth"
	"contactbook/internal/handler"
	"contactbook/internal/middleware"
	"contactbook/internal/store"
)

type Deps struct {
	Store       *store.Store
	TokenConfig auth.TokenConfig
	Log         zerolog.Logger
	// AuthLimiter throttles login and register. Nil disables throttling.
	AuthLimiter *middleware.RateLimiter
}

// NewRouter builds the devapi engine serving the contacts backend contract
// under /api.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Log))
	r.Use(middleware.Recovery(deps.Log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api")

	authHandler := &handler.AuthHandler{Store: deps.Store, TokenConfig: deps.TokenConfig, Log: deps.Log}
	authGroup := api.Group("/auth")
	if deps.AuthLimiter != nil {
		authGroup.Use(middleware.RateLimitMiddleware(deps.AuthLimiter))
	}
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/register", authHandler.Register)

	contactHandler := &handler.ContactHandler{Store: deps.Store}
	protected := api.Group("/contacts")
	protected.Use(middleware.RequireAuth(deps.TokenConfig))
	protected.GET("", contactHandler.List)
	protected.POST("", contactHandler.Create)
	protected.GET("/:id", contactHandler.Get)
	protected.PUT("/:id", contactHandler.Update)
	protected.DELETE("/:id", contactHandler.Delete)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})

	return r
}

// NewAuthLimiter allows perMinute login/register calls per client IP.
func NewAuthLimiter(perMinute int) *middleware.RateLimiter {
	return middleware.NewRateLimiter(perMinute, time.Minute)
}
