// Package main runs the workshop management HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tallerhub/backend/config"
	"github.com/tallerhub/backend/internal/auth"
	"github.com/tallerhub/backend/internal/billing"
	"github.com/tallerhub/backend/internal/clients"
	"github.com/tallerhub/backend/internal/guard"
	"github.com/tallerhub/backend/internal/middleware"
	"github.com/tallerhub/backend/internal/products"
	"github.com/tallerhub/backend/internal/rbac"
	"github.com/tallerhub/backend/internal/sequence"
	"github.com/tallerhub/backend/internal/session"
	"github.com/tallerhub/backend/internal/tenants"
	"github.com/tallerhub/backend/internal/worker"
	"github.com/tallerhub/backend/internal/workorders"
	"github.com/tallerhub/backend/pkg/database"
	"github.com/tallerhub/backend/pkg/queue"
	"github.com/tallerhub/backend/pkg/redis"
	"github.com/tallerhub/backend/pkg/response"
	"github.com/tallerhub/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			Bucket:               cfg.AWS.LogosBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Tenants and sessions
	tenantRepo := tenants.NewRepository(pool)
	sessionStore := session.NewStore(rdb.Client)
	sessionManager := session.NewManager(tenantRepo, tenantRepo, sessionStore, logger)
	sessionHandler := session.NewHandler(sessionManager, logger)
	tenantHandler := tenants.NewHandler(tenantRepo, authRepo, sessionManager, s3Client, logger)

	// Order numbering
	seqStore := sequence.NewPostgresStore(pool)
	numberGen := sequence.NewGenerator(seqStore)

	// Clients
	clientRepo := clients.NewRepository(pool)
	clientHandler := clients.NewHandler(clientRepo)

	// Products
	productRepo := products.NewRepository(pool)
	productHandler := products.NewHandler(productRepo)

	// Work orders
	orderRepo := workorders.NewRepository(pool)
	orderHandler := workorders.NewHandler(orderRepo, numberGen, sessionManager, logger)

	// Billing
	jobQueue := queue.NewQueue(rdb.Client, logger)
	invoiceRepo := billing.NewRepository(pool)
	invoiceHandler := billing.NewHandler(invoiceRepo, orderRepo, jobQueue, logger)
	invoiceProcessor := worker.NewInvoiceProcessor(invoiceRepo, jobQueue, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.POST("/auth/logout", sessionHandler.Logout)
		api.GET("/session", sessionHandler.GetState)

		// Tenant directory and selection (no tenant context required)
		api.GET("/tenants", tenantHandler.List)
		api.POST("/tenants", tenantHandler.Create)
		api.POST("/tenants/:id/select", tenantHandler.Select)
		api.PATCH("/tenants/:id", tenantHandler.Update)
		api.DELETE("/tenants/:id", tenantHandler.Delete)

		// Everything below operates on the selected tenant.
		view := api.Group("", guard.RequirePermission(sessionManager, rbac.PermissionView))
		{
			view.GET("/tenants/members", tenantHandler.ListMembers)
			view.GET("/tenants/logo-url", tenantHandler.LogoURL)

			view.GET("/clients", clientHandler.List)
			view.GET("/clients/:id", clientHandler.GetByID)
			view.GET("/products", productHandler.List)
			view.GET("/products/:id", productHandler.GetByID)
			view.GET("/orders", orderHandler.List)
			view.GET("/orders/:id", orderHandler.GetByID)
			view.GET("/invoices", invoiceHandler.List)
			view.GET("/invoices/:id", invoiceHandler.GetByID)
		}

		edit := api.Group("", guard.RequirePermission(sessionManager, rbac.PermissionEdit))
		{
			edit.POST("/tenants/members", tenantHandler.AddMember)
			edit.PATCH("/tenants/members/:userId", tenantHandler.UpdateMember)
			edit.POST("/tenants/logo", tenantHandler.UploadLogo)

			edit.POST("/clients", clientHandler.Create)
			edit.PATCH("/clients/:id", clientHandler.Update)
			edit.POST("/products", productHandler.Create)
			edit.PATCH("/products/:id", productHandler.Update)
			edit.POST("/products/:id/stock", productHandler.AdjustStock)
			edit.POST("/orders", orderHandler.Create)
			edit.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
			edit.POST("/invoices", invoiceHandler.Create)
			edit.POST("/invoices/:id/pay", invoiceHandler.MarkPaid)
		}

		del := api.Group("", guard.RequirePermission(sessionManager, rbac.PermissionDelete))
		{
			del.DELETE("/tenants/members/:userId", tenantHandler.RemoveMember)

			del.DELETE("/clients/:id", clientHandler.Delete)
			del.DELETE("/products/:id", productHandler.Delete)
			del.DELETE("/orders/:id", orderHandler.Delete)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (invoice issuing)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go invoiceProcessor.Run(workerCtx)
	logger.Info("invoice worker started")

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
