package main

import (
  "context"
  "fmt"
  "os"
  "time"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/config"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/db"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/handlers"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/middleware"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/observability"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/sendgrid"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/repos"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/server"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/services"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Config + Env
  log.Info("Loading configuration from main...")
  cfg, err := config.Load()
  if err != nil {
    log.Error("Could not load config", "error", err)
    os.Exit(1)
  }
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

  // Tracing
  otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: "agrilpa-backend",
    Environment: utils.GetEnv("APP_ENV", "development", log),
    Version:     utils.GetEnv("APP_VERSION", "dev", log),
  })
  if otelShutdown != nil {
    defer func() {
      ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
      defer cancel()
      _ = otelShutdown(ctx)
    }()
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  sessionRepo := repos.NewSessionRepo(thePG, log)
  productRepo := repos.NewProductRepo(thePG, log)
  staticVisibilityRepo := repos.NewStaticVisibilityRepo(thePG, log)
  orderRepo := repos.NewOrderRepo(thePG, log)
  quotationRepo := repos.NewQuotationRepo(thePG, log)
  clickEventRepo := repos.NewClickEventRepo(thePG, log)
  contactRepo := repos.NewContactRepo(thePG, log)
  newsletterRepo := repos.NewNewsletterRepo(thePG, log)

  // Services
  log.Info("Setting up Services from main...")
  sendgridClient, err := sendgrid.NewFromEnv(log)
  if err != nil {
    log.Warn("Could not init SendGrid client, emails disabled", "error", err)
  }
  var mailerService services.MailerService
  if sendgridClient != nil {
    mailerService = services.NewMailerService(log, sendgridClient)
  }
  authService := services.NewAuthService(thePG, log, cfg, userRepo, sessionRepo, productRepo, mailerService, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
  userService := services.NewUserService(thePG, log, userRepo)
  productService := services.NewProductService(thePG, log, productRepo, userRepo, staticVisibilityRepo)
  orderService := services.NewOrderService(thePG, log, orderRepo, productRepo)
  quotationService := services.NewQuotationService(thePG, log, quotationRepo, productRepo, orderRepo, userRepo, mailerService)
  trackingService := services.NewTrackingService(log, clickEventRepo)
  contactService := services.NewContactService(cfg, log, contactRepo, mailerService)
  newsletterService := services.NewNewsletterService(cfg, log, newsletterRepo, mailerService)
  adminService := services.NewAdminService(log, userRepo, productRepo, orderRepo, quotationRepo, clickEventRepo, contactRepo, newsletterRepo)

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  userHandler := handlers.NewUserHandler(userService)
  productHandler := handlers.NewProductHandler(productService)
  orderHandler := handlers.NewOrderHandler(orderService)
  quotationHandler := handlers.NewQuotationHandler(quotationService)
  trackingHandler := handlers.NewTrackingHandler(trackingService)
  contactHandler := handlers.NewContactHandler(contactService)
  newsletterHandler := handlers.NewNewsletterHandler(newsletterService)
  adminHandler := handlers.NewAdminHandler(adminService)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AppConfig:            cfg,
    AuthHandler:          authHandler,
    AuthMiddleware:       authMiddleware,
    UserHandler:          userHandler,
    ProductHandler:       productHandler,
    OrderHandler:         orderHandler,
    QuotationHandler:     quotationHandler,
    TrackingHandler:      trackingHandler,
    ContactHandler:       contactHandler,
    NewsletterHandler:    newsletterHandler,
    AdminHandler:         adminHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
