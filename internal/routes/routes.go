// Package routes defines HTTP routes for the user service.
package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/GunarsK-portfolio/user-service/internal/config"
	"github.com/GunarsK-portfolio/user-service/internal/handlers"
	"github.com/GunarsK-portfolio/user-service/internal/logging"
	"github.com/GunarsK-portfolio/user-service/internal/metrics"
	"github.com/GunarsK-portfolio/user-service/internal/middleware"
	"github.com/GunarsK-portfolio/user-service/internal/service"
)

// Dependencies groups what Setup wires into the router.
type Dependencies struct {
	Config      *config.Config
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	AuthService service.AuthService
	UserService service.UserService
	Health      *handlers.HealthHandler
}

// Setup configures all HTTP routes for the application.
func Setup(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	router.Use(gin.Recovery())
	router.Use(logging.RequestLogger(deps.Logger))
	router.Use(deps.Metrics.Middleware())
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(middleware.OriginCheck(middleware.OriginCheckConfig{
			AllowedOrigins: cfg.AllowedOrigins,
			Logger:         deps.Logger,
		}))
	}

	health := deps.Health
	if health == nil {
		health = handlers.NewHealthHandler()
	}
	router.GET("/health", health.Check)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Metrics, deps.Logger)
	userHandler := handlers.NewUserHandler(deps.UserService, deps.Logger)

	bearer := middleware.BearerAuth(deps.AuthService, middleware.BearerConfig{Header: cfg.TokenHeader})
	basic := middleware.StaticBasicAuth(middleware.BasicAuthConfig{
		Username: cfg.BasicAuthUsername,
		Password: cfg.BasicAuthPassword,
		Realm:    cfg.BasicAuthRealm,
	})

	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)
	router.POST("/logout", bearer, authHandler.Logout)

	users := router.Group("/users")
	{
		users.GET("", basic, userHandler.List)
		users.POST("", basic, userHandler.Create)
		users.GET("/:id", bearer, userHandler.Get)
		users.PUT("/:id", bearer, userHandler.Update)
	}

	router.GET("/protected", basic, handlers.Protected)
}
