package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// APIConfig is everything the versioned API routes need
type APIConfig struct {
	Auth     *handler.AuthHandler
	Products *handler.ProductHandler
	Orders   *handler.OrderHandler
	System   *handler.SystemHandler

	Authenticator middleware.Authenticator

	// Idempotency is optional; without it POST /orders ignores Idempotency-Key
	Idempotency    shared.IdempotencyStore
	IdempotencyTTL time.Duration

	// AuthLimiter throttles login and registration per client IP when set
	AuthLimiter *middleware.RateLimiter

	Logger *zap.Logger
}

// APIRoutes builds the auth, catalog, orders and system domain groups
func APIRoutes(cfg APIConfig) []RouteRegistrar {
	requireAuth := middleware.RequireAuth(cfg.Authenticator, cfg.Logger)
	throttle := func(c *gin.Context) { c.Next() }
	if cfg.AuthLimiter != nil {
		throttle = middleware.RateLimit(cfg.AuthLimiter)
	}

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", throttle, cfg.Auth.Register)
	authRoutes.POST("/login", throttle, cfg.Auth.Login)
	authRoutes.POST("/refresh", cfg.Auth.RefreshToken)
	authRoutes.POST("/logout", requireAuth, cfg.Auth.Logout)
	authRoutes.GET("/me", requireAuth, cfg.Auth.Me)

	catalogRoutes := NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("/products", middleware.OptionalAuth(cfg.Authenticator), cfg.Products.List)
	manage := middleware.RequireRoles(identity.RoleSeller, identity.RoleAdmin)
	products := catalogRoutes.Group("products", "/products").Use(requireAuth)
	products.GET("/:id", cfg.Products.Get)
	products.POST("", manage, cfg.Products.Create)
	products.PATCH("/:id", manage, cfg.Products.Update)
	products.DELETE("/:id", manage, cfg.Products.Delete)

	orderRoutes := NewDomainGroup("orders", "/orders").Use(requireAuth)
	place := []gin.HandlerFunc{middleware.RequireRoles(identity.RoleCustomer)}
	if cfg.Idempotency != nil {
		place = append(place, middleware.Idempotency(cfg.Idempotency, cfg.IdempotencyTTL, cfg.Logger))
	}
	orderRoutes.POST("", append(place, cfg.Orders.Place)...)
	orderRoutes.GET("", cfg.Orders.List)

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", cfg.System.GetSystemInfo)

	return []RouteRegistrar{authRoutes, catalogRoutes, orderRoutes, systemRoutes}
}
