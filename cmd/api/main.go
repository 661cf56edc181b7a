package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "inventario/api/swagger" // swagger docs
	"inventario/internal/config"
	"inventario/internal/database"
	"inventario/internal/handler"
	"inventario/internal/middleware"
	"inventario/internal/repository"
	"inventario/internal/service"
	"inventario/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Inventario API
// @version         1.0
// @description     IT asset and procurement tracker: stock, internal requests, purchase requests, audit log and notifications.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load("configs/.env")
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.GinMode)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(logger.Named("ws"), cfg.CORSOrigins)
	go wsHub.Run(ctx)

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	tonerRepo := repository.NewTonerRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	internalRequestRepo := repository.NewInternalRequestRepository(db)
	purchaseRequestRepo := repository.NewPurchaseRequestRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)

	// Services
	auditService := service.NewAuditService(auditRepo)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, wsHub, logger.Named("notifications"))
	userService := service.NewUserService(txManager, userRepo, auditService, cfg.JWTSecret, cfg.JWTTTL)
	catalogService := service.NewCatalogService(txManager, materialRepo, tonerRepo, auditService, notificationService)
	stockService := service.NewStockService(txManager, materialRepo, movementRepo, auditService)
	internalRequestService := service.NewInternalRequestService(txManager, internalRequestRepo, materialRepo, tonerRepo, auditService, notificationService)
	purchaseRequestService := service.NewPurchaseRequestService(txManager, purchaseRequestRepo, quotationRepo, auditService, notificationService)
	statisticsService := service.NewStatisticsService(statisticsRepo)

	seeded, err := userService.SeedAdministrator(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		logger.Fatal("seed administrator", zap.Error(err))
	}
	if seeded {
		logger.Info("bootstrap administrator created", zap.String("username", cfg.AdminUsername))
	}

	// Handlers
	secureCookies := cfg.GinMode == gin.ReleaseMode
	userHandler := handler.NewUserHandler(userService, cfg.JWTTTL, secureCookies)
	protectedHandlers := []interface {
		RegisterRoutes(router *gin.RouterGroup)
	}{
		userHandler,
		handler.NewRoleHandler(),
		handler.NewInventoryHandler(catalogService, stockService),
		handler.NewInternalRequestHandler(internalRequestService),
		handler.NewPurchaseRequestHandler(purchaseRequestService),
		handler.NewNotificationHandler(notificationService),
		handler.NewAuditHandler(auditService),
		handler.NewStatisticsHandler(statisticsService),
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(logger.Named("http")), middleware.Recovery(logger))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	secret := []byte(cfg.JWTSecret)
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, secret)
	})

	public := router.Group("/")
	userHandler.RegisterPublicRoutes(public)

	protected := router.Group("/", middleware.Authenticate(secret), middleware.CurrentRole(userRepo), middleware.Authorize())
	for _, h := range protectedHandlers {
		h.RegisterRoutes(protected)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("shutdown complete")
}

func newLogger(ginMode string) (*zap.Logger, error) {
	if ginMode == gin.ReleaseMode {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
