package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kiendt120702/BTCShopee-sub000/internal/infrastructure/auth"
	"github.com/kiendt120702/BTCShopee-sub000/internal/infrastructure/logger"
	"github.com/kiendt120702/BTCShopee-sub000/internal/interfaces/http/handler"
	"github.com/kiendt120702/BTCShopee-sub000/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config holds router dependencies
type Config struct {
	Logger     *zap.Logger
	JWTService *auth.JWTService
	System     *handler.SystemHandler
	Registrars []RouteRegistrar
}

// Setup builds the gin engine: request-ID and logging middleware, open
// health endpoints, and the JWT-protected versioned API group.
func Setup(cfg Config) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(logger.Recovery(cfg.Logger))

	if cfg.System != nil {
		engine.GET("/health", cfg.System.Health)
		engine.GET("/ready", cfg.System.Ready)
	}

	api := engine.Group("/api/v1")
	if cfg.JWTService != nil {
		api.Use(middleware.JWTAuthMiddleware(cfg.JWTService))
	}
	for _, registrar := range cfg.Registrars {
		registrar.RegisterRoutes(api)
	}

	return engine
}
