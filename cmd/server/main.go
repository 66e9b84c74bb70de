// Package main runs the operations board HTTP server with the live
// notification feed and graceful shutdown.
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

	"github.com/swisspharma/opsboard-backend/config"
	"github.com/swisspharma/opsboard-backend/internal/ai"
	"github.com/swisspharma/opsboard-backend/internal/attachments"
	"github.com/swisspharma/opsboard-backend/internal/audit"
	"github.com/swisspharma/opsboard-backend/internal/auth"
	"github.com/swisspharma/opsboard-backend/internal/authz"
	"github.com/swisspharma/opsboard-backend/internal/meetings"
	"github.com/swisspharma/opsboard-backend/internal/middleware"
	"github.com/swisspharma/opsboard-backend/internal/notifications"
	"github.com/swisspharma/opsboard-backend/internal/realtime"
	"github.com/swisspharma/opsboard-backend/internal/snapshot"
	"github.com/swisspharma/opsboard-backend/internal/tasks"
	"github.com/swisspharma/opsboard-backend/internal/users"
	"github.com/swisspharma/opsboard-backend/pkg/database"
	"github.com/swisspharma/opsboard-backend/pkg/queue"
	"github.com/swisspharma/opsboard-backend/pkg/redis"
	"github.com/swisspharma/opsboard-backend/pkg/response"
	"github.com/swisspharma/opsboard-backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.AccessKeyID != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			AttachmentsBucket:    cfg.AWS.AttachmentsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Audit trail
	auditRepo := audit.NewRepository(pool)
	auditor := audit.NewRecorder(auditRepo, logger)
	auditHandler := audit.NewHandler(auditRepo)

	// Notifications
	notifRepo := notifications.NewRepository(pool)
	notifRouter := notifications.NewRouter(notifRepo, hub, logger)
	notifHandler := notifications.NewHandler(notifRepo)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, auditor, logger)

	// Personnel
	userRepo := users.NewRepository(pool)

	// Tasks
	taskRepo := tasks.NewRepository(pool)
	taskService := tasks.NewService(taskRepo, authRepo, notifRouter, auditor, logger)
	taskHandler := tasks.NewHandler(taskRepo, taskService)

	// Meetings
	meetingRepo := meetings.NewRepository(pool)
	meetingService := meetings.NewService(meetingRepo, taskService, notifRouter, auditor, jobQueue, logger)
	meetingHandler := meetings.NewHandler(meetingRepo, meetingService)

	// AI assistance
	aiClient := ai.NewClient(cfg.Gemini, logger)
	aiHandler := ai.NewHandler(aiClient, userRepo)

	// Personnel handler needs the appraisal evidence sources
	userHandler := users.NewHandler(userRepo, auditor, aiClient, taskRepo, meetingRepo, auditRepo)

	// Snapshot export/import
	snapshotStore := snapshot.NewStore(pool)
	snapshotHandler := snapshot.NewHandler(snapshotStore, auditor)

	jwtValidate := func(token string) (string, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", err
		}
		return claims.UserID.String(), nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	router.POST("/auth/login", authHandler.Login)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService, authRepo))
	{
		// Personnel directory and management
		api.GET("/users", userHandler.List)
		api.POST("/users", middleware.RequireCapability(authz.ActionPersonnelManage), userHandler.Create)
		api.PUT("/users/:id", middleware.RequireCapability(authz.ActionPersonnelManage), userHandler.Update)
		api.POST("/users/:id/appraisal", userHandler.Appraisal)

		// Designations
		api.GET("/designations", userHandler.ListDesignations)
		api.POST("/designations", middleware.RequireCapability(authz.ActionPersonnelManage), userHandler.CreateDesignation)

		// Meetings
		api.GET("/meetings", meetingHandler.List)
		api.POST("/meetings", meetingHandler.Create)
		api.GET("/meetings/:id", meetingHandler.Get)
		api.PUT("/meetings/:id", meetingHandler.Update)
		api.POST("/meetings/:id/finalize", meetingHandler.Finalize)
		api.DELETE("/meetings/:id", meetingHandler.Delete)

		// Tasks
		api.GET("/tasks", taskHandler.List)
		api.POST("/tasks", middleware.RequireCapability(authz.ActionTaskAssign), taskHandler.Create)
		api.POST("/tasks/:id/transition", taskHandler.Transition)
		api.DELETE("/tasks/:id", taskHandler.Delete)

		// Notifications
		api.GET("/notifications", notifHandler.List)
		api.POST("/notifications/read-all", notifHandler.MarkAllRead)
		api.DELETE("/notifications/:id", notifHandler.Dismiss)

		// Audit trail (Chairman and CEO only)
		api.GET("/audit-logs", middleware.RequireCapability(authz.ActionAuditView), auditHandler.List)

		// AI assistance
		api.POST("/ai/summarize", aiHandler.Summarize)
		api.POST("/ai/extract-tasks", aiHandler.ExtractTasks)
		api.POST("/ai/transcribe", aiHandler.Transcribe)

		// Attachments (disabled without S3 credentials)
		if s3Client != nil {
			attachmentHandler := attachments.NewHandler(s3Client)
			api.POST("/attachments", attachmentHandler.Upload)
			api.GET("/attachments/download-url", attachmentHandler.DownloadURL)
		}

		// Snapshot export/import (Chairman only)
		api.GET("/snapshot", middleware.RequireCapability(authz.ActionSnapshotManage), snapshotHandler.Export)
		api.POST("/snapshot", middleware.RequireCapability(authz.ActionSnapshotManage), snapshotHandler.Import)
	}

	// WebSocket feed (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

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
