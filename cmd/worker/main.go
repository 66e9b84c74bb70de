// Package main runs the background worker: due-task reminders and
// minutes recap generation.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/swisspharma/opsboard-backend/config"
	"github.com/swisspharma/opsboard-backend/internal/ai"
	"github.com/swisspharma/opsboard-backend/internal/meetings"
	"github.com/swisspharma/opsboard-backend/internal/notifications"
	"github.com/swisspharma/opsboard-backend/internal/realtime"
	"github.com/swisspharma/opsboard-backend/internal/tasks"
	"github.com/swisspharma/opsboard-backend/internal/worker"
	"github.com/swisspharma/opsboard-backend/pkg/database"
	"github.com/swisspharma/opsboard-backend/pkg/queue"
	"github.com/swisspharma/opsboard-backend/pkg/redis"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Notifications created by jobs are published to the feed channels
	// so the server instances deliver them to connected clients.
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	notifRepo := notifications.NewRepository(pool)
	notifRouter := notifications.NewRouter(notifRepo, feedBridge{redisPubSub}, logger)

	taskRepo := tasks.NewRepository(pool)
	meetingRepo := meetings.NewRepository(pool)
	aiClient := ai.NewClient(cfg.Gemini, logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	processor := worker.NewProcessor(jobQueue, notifRouter, meetingRepo, aiClient, logger)
	scanner := worker.NewReminderScanner(taskRepo, jobQueue, rdb.Client,
		cfg.Worker.ReminderScanMinutes, cfg.Worker.ReminderWindowHours, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	go scanner.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

// feedBridge adapts the Redis publisher to the notification router's
// feed interface; the worker holds no local WebSocket connections.
type feedBridge struct {
	pub *realtime.RedisPubSub
}

func (b feedBridge) PublishToUser(userID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = b.pub.PublishFeedEvent(userID, event, data)
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
