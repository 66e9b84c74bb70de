package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/swisspharma/opsboard-backend/internal/models"
	"github.com/swisspharma/opsboard-backend/pkg/queue"
)

// dedupeTTL keeps a reminder marker long enough to cover the scan
// window plus clock drift between instances.
const dedupeTTL = 48 * time.Hour

// TaskScanner lists active tasks approaching their due date.
type TaskScanner interface {
	ListDueWithin(ctx context.Context, windowHours int) ([]models.Task, error)
}

// ReminderScanner periodically finds tasks due inside the window and
// enqueues one reminder per task per day. Dedupe runs through Redis
// SETNX so multiple scanner instances never double-remind.
type ReminderScanner struct {
	tasks       TaskScanner
	queue       *queue.Queue
	redis       *redis.Client
	interval    time.Duration
	windowHours int
	logger      *zap.Logger
}

// NewReminderScanner creates the due-task scanner.
func NewReminderScanner(tasks TaskScanner, q *queue.Queue, rdb *redis.Client, scanMinutes, windowHours int, logger *zap.Logger) *ReminderScanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderScanner{
		tasks:       tasks,
		queue:       q,
		redis:       rdb,
		interval:    time.Duration(scanMinutes) * time.Minute,
		windowHours: windowHours,
		logger:      logger,
	}
}

// Run scans immediately and then on every tick until ctx is done.
func (s *ReminderScanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scanner stopping")
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *ReminderScanner) scan(ctx context.Context) {
	tasks, err := s.tasks.ListDueWithin(ctx, s.windowHours)
	if err != nil {
		s.logger.Warn("due task scan failed", zap.Error(err))
		return
	}

	enqueued := 0
	for i := range tasks {
		t := &tasks[i]
		key := fmt.Sprintf("reminder:%s:%s", t.ID, time.Now().UTC().Format("2006-01-02"))
		ok, err := s.redis.SetNX(ctx, key, 1, dedupeTTL).Result()
		if err != nil {
			s.logger.Warn("reminder dedupe check failed", zap.Error(err), zap.String("task_id", t.ID.String()))
			continue
		}
		if !ok {
			continue
		}
		err = s.queue.Enqueue(ctx, queue.JobTypeDueReminder, queue.DueReminderPayload{
			TaskID:       t.ID,
			AssignedToID: t.AssignedToID,
			Title:        t.Title,
			DueDate:      t.DueDate,
			Priority:     string(t.Priority),
		})
		if err != nil {
			s.logger.Error("reminder enqueue failed", zap.Error(err), zap.String("task_id", t.ID.String()))
			continue
		}
		enqueued++
	}
	if enqueued > 0 {
		s.logger.Info("due reminders enqueued", zap.Int("count", enqueued))
	}
}
