package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/config"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/handlers"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/middleware"
)

type RouterConfig struct {
  AppConfig         config.Config
  AuthHandler       *handlers.AuthHandler
  AuthMiddleware    *middleware.AuthMiddleware
  UserHandler       *handlers.UserHandler
  ProductHandler    *handlers.ProductHandler
  OrderHandler      *handlers.OrderHandler
  QuotationHandler  *handlers.QuotationHandler
  TrackingHandler   *handlers.TrackingHandler
  ContactHandler    *handlers.ContactHandler
  NewsletterHandler *handlers.NewsletterHandler
  AdminHandler      *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()
  router.Use(otelgin.Middleware("agrilpa-backend"))

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins:     cfg.AppConfig.AllowedOrigins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  router.POST("/register", cfg.AuthHandler.Register)
  router.POST("/login", cfg.AuthHandler.Login)

  api := router.Group("/api")
  {
    api.GET("/products", cfg.ProductHandler.ListVisible)
    api.POST("/products/:id/views", cfg.ProductHandler.View)
    api.POST("/track/click", cfg.TrackingHandler.RecordClick)
    api.POST("/contact", cfg.ContactHandler.Submit)
    api.POST("/newsletter/subscribe", cfg.NewsletterHandler.Subscribe)
  }

// ===============
// || Protected ||
// ===============
  session := router.Group("/")
  session.Use(cfg.AuthMiddleware.RequireAuth())
  session.POST("/refresh", cfg.AuthHandler.Refresh)
  session.POST("/logout", cfg.AuthHandler.Logout)
  session.POST("/change-password", cfg.AuthHandler.ChangePassword)
  session.DELETE("/account", cfg.AuthHandler.DeleteAccount)

  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // User
  protected.GET("/me", cfg.UserHandler.Me)
  protected.PUT("/me", cfg.UserHandler.UpdateProfile)
  // Products
  protected.GET("/products/mine", cfg.ProductHandler.ListMine)
  protected.POST("/products", cfg.ProductHandler.Create)
  protected.PUT("/products/:id", cfg.ProductHandler.Update)
  protected.DELETE("/products/:id", cfg.ProductHandler.Delete)
  // Orders
  protected.GET("/orders", cfg.OrderHandler.List)
  protected.POST("/orders", cfg.OrderHandler.Create)
  protected.GET("/orders/:id", cfg.OrderHandler.Get)
  protected.PUT("/orders/:id/status", cfg.OrderHandler.UpdateStatus)
  protected.PUT("/orders/:id/read", cfg.OrderHandler.MarkRead)
  protected.PUT("/orders/read-all", cfg.OrderHandler.MarkAllRead)
  // Quotations
  protected.GET("/quotations", cfg.QuotationHandler.List)
  protected.POST("/quotations", cfg.QuotationHandler.Create)
  protected.PUT("/quotations/:id/reply", cfg.QuotationHandler.Reply)
  protected.PUT("/quotations/:id/reject", cfg.QuotationHandler.Reject)
  protected.PUT("/quotations/:id/read", cfg.QuotationHandler.MarkRead)
  protected.POST("/quotations/:id/accept", cfg.QuotationHandler.Accept)

// ===============
// || Admin     ||
// ===============
  admin := protected.Group("/admin")
  admin.Use(cfg.AuthMiddleware.RequireAdmin(), middleware.NoCache())
  admin.GET("/stats", cfg.AdminHandler.Dashboard)
  admin.GET("/users", cfg.UserHandler.List)
  admin.PUT("/users/:id/role", cfg.UserHandler.UpdateRole)
  admin.POST("/confirm-emails", cfg.AuthHandler.ConfirmEmails)
  admin.PUT("/static-products/:id/visibility", cfg.ProductHandler.SetStaticVisibility)
  admin.GET("/clicks", cfg.TrackingHandler.List)
  admin.GET("/contacts", cfg.ContactHandler.List)
  admin.GET("/newsletter", cfg.NewsletterHandler.List)
  admin.POST("/newsletter/send", cfg.NewsletterHandler.SendToAll)

  return router
}
