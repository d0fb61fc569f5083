package router

import (
	"net/url"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"renovirt-backend/docs"
	"renovirt-backend/internal/config"
	"renovirt-backend/internal/handlers"
	"renovirt-backend/internal/middleware"
)

type Handlers struct {
	Health    *handlers.HealthHandler
	Orders    *handlers.OrdersHandler
	Referrals *handlers.ReferralsHandler
	Downloads *handlers.DownloadsHandler
	Admin     *handlers.AdminHandler
}

func Setup(cfg *config.Config, logger *zap.Logger, limiter middleware.Limiter, h Handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	// ZIP bundles are already compressed.
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`/deliverables/zip$`})))

	router.GET("/health", h.Health.Health)

	configureSwagger(cfg.BaseURL)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")

	// Public catalog and pricing
	api.GET("/packages", h.Orders.ListPackages)
	api.GET("/add-ons", h.Orders.ListAddOns)
	api.POST("/orders/quote", middleware.OptionalAuth(cfg), middleware.RateLimit(limiter, "quote"), h.Orders.Quote)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(cfg))

	// Orders
	authed.POST("/orders", middleware.RateLimit(limiter, "orders"), h.Orders.CreateOrder)
	authed.GET("/orders", h.Orders.ListOrders)
	authed.GET("/orders/:order_id", h.Orders.GetOrder)
	authed.GET("/orders/:order_id/files", h.Orders.GetFiles)

	// Downloads
	authed.GET("/orders/:order_id/deliverables", h.Downloads.Deliverables)
	authed.GET("/orders/:order_id/deliverables/zip", h.Downloads.Bundle)
	authed.GET("/orders/:order_id/invoice", h.Downloads.Invoice)

	authed.GET("/credits", h.Orders.GetCredits)

	referrals := authed.Group("/referrals", middleware.RateLimit(limiter, "referrals"))
	referrals.POST("/validate", h.Referrals.Validate)
	referrals.POST("/redeem", h.Referrals.Redeem)

	admin := authed.Group("/admin", middleware.RequireAdmin())
	admin.GET("/orders", h.Admin.ListOrders)
	admin.PATCH("/orders/:order_id/status", h.Admin.UpdateStatus)
	admin.GET("/help/analytics", h.Admin.HelpAnalytics)

	return router
}

// configureSwagger points the served docs at the public host the API runs on.
func configureSwagger(baseURL string) {
	if baseURL == "" {
		return
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return
	}
	docs.SwaggerInfo.Host = u.Host
	if u.Scheme == "https" {
		docs.SwaggerInfo.Schemes = []string{"https", "http"}
	} else {
		docs.SwaggerInfo.Schemes = []string{"http", "https"}
	}
}
