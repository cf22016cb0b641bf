package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"maintenance-app/tracking-service/config"
	"maintenance-app/tracking-service/internal/handler"
	"maintenance-app/tracking-service/internal/repository"
	"maintenance-app/tracking-service/internal/services"
	"maintenance-app/tracking-service/internal/utils"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	baseCtx := context.Background()
	ctx, shutdownManager := utils.NewShutdownManager(baseCtx, logger)
	shutdownManager.StartListening()

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// MongoDB, with bounded connect retry
	mongoClient, err := utils.NewMongoDBConnection(cfg.MongoDB.URI, logger)
	if err != nil {
		logger.Fatal("mongo connection failed", zap.Error(err))
	}
	shutdownManager.Register(func(ctx context.Context) error {
		logger.Info("closing mongodb connection")
		return mongoClient.Disconnect(ctx)
	})
	db := mongoClient.Database(cfg.MongoDB.DBName)

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	shutdownManager.Register(func(context.Context) error {
		logger.Info("closing redis connection")
		return rdb.Close()
	})

	// Object storage for photos
	minioClient, err := utils.NewMinioClient(
		cfg.Storage.Endpoint,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
		cfg.Storage.Bucket,
		cfg.Storage.UseSSL,
	)
	if err != nil {
		logger.Fatal("object storage connection failed", zap.Error(err))
	}

	// Repositories, services, handlers
	issueRepo := repository.NewIssueRepository(db, logger)
	branchRepo := repository.NewBranchRepository(db, logger)
	auditRepo := repository.NewAuditRepository(db, logger)

	photos := services.NewPhotoService(minioClient, cfg.Storage.Bucket, cfg.Storage.PublicURL, cfg.Storage.UploadTimeout)

	var notifier services.Notifier = services.NoopNotifier{}
	if cfg.Tracking.WebhookURL != "" {
		notifier = services.NewWebhookNotifier(cfg.Tracking.WebhookURL, logger)
	}

	branchCtx := services.NewBranchContext(rdb, logger)
	issueService := services.NewIssueService(issueRepo, photos, notifier, logger, cfg.Tracking.PageSize)
	branchService := services.NewBranchService(branchRepo)
	auditService := services.NewAuditService(auditRepo, photos, logger)

	// Warm the issue cache whenever a session switches branches.
	branchCtx.OnBranchChange(func(sessionID, branchID string) {
		go func() {
			if _, err := issueService.Refresh(context.Background(), branchID); err != nil {
				logger.Warn("branch prefetch failed",
					zap.String("branchId", branchID),
					zap.Error(err))
			}
		}()
	})

	authHandler := handler.NewAuthHandler(cfg.Auth.JWTSecret, logger)
	issueHandler := handler.NewIssueHandler(issueService, branchCtx, rdb, logger)
	branchHandler := handler.NewBranchHandler(branchService, branchCtx, logger)
	auditHandler := handler.NewAuditHandler(auditService, logger)

	// Router and endpoints
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.RequestLogger(logger))
	router.Use(cors.Default())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authMiddleware := utils.AuthMiddleware(cfg.Auth.JWTSecret)
	rateLimiter := utils.IssueRateLimiter(rdb, "issue-limit", cfg.Tracking.DailyIssueLimit)

	api := router.Group("/api")
	api.POST("/auth/anonymous", authHandler.SignInAnonymously)

	issues := api.Group("/issues", authMiddleware)
	{
		issues.GET("", issueHandler.ListIssues)
		issues.POST("", rateLimiter, issueHandler.CreateIssue)
		issues.POST("/refresh", issueHandler.RefreshIssues)
		issues.GET("/export", issueHandler.ExportIssues)
		issues.GET("/stats", issueHandler.Stats)
		issues.DELETE("", issueHandler.DeleteAllIssues)
		issues.GET("/:id", issueHandler.GetIssue)
		issues.PATCH("/:id/status", issueHandler.UpdateStatus)
		issues.DELETE("/:id", issueHandler.DeleteIssue)
		issues.GET("/:id/comments", issueHandler.ListComments)
		issues.POST("/:id/comments", issueHandler.AddComment)
	}

	branches := api.Group("/branches", authMiddleware)
	{
		branches.GET("", branchHandler.ListBranches)
		branches.POST("", branchHandler.CreateBranch)
		branches.GET("/:id", branchHandler.GetBranch)
		branches.PUT("/:id", branchHandler.UpdateBranch)
		branches.DELETE("/:id", branchHandler.DeleteBranch)
	}

	contextGroup := api.Group("/context", authMiddleware)
	{
		contextGroup.GET("/branch", branchHandler.CurrentBranch)
		contextGroup.PUT("/branch", branchHandler.SetCurrentBranch)
	}

	audits := api.Group("/audits", authMiddleware)
	{
		audits.POST("", auditHandler.CreateAudit)
		audits.GET("", auditHandler.ListAudits)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("tracking service listening", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	shutdownManager.Register(func(ctx context.Context) error {
		logger.Info("shutting down http server")
		return server.Shutdown(ctx)
	})

	select {}
}
