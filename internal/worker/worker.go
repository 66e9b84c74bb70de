package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swisspharma/opsboard-backend/internal/models"
	"github.com/swisspharma/opsboard-backend/pkg/queue"
)

// Notifier fans a system event out to one user's notification feed.
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, typ models.NotificationType, title, message string, linkTo models.LinkTarget, referenceID *uuid.UUID)
}

// MeetingStore is the slice of meeting persistence the processor needs.
type MeetingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error)
	SetRecap(ctx context.Context, meetingID uuid.UUID, recap string) error
}

// Summarizer condenses finalized minutes into a recap.
type Summarizer interface {
	SummarizeMinutes(ctx context.Context, rawNotes string) (string, error)
}

// Processor consumes background jobs: due-task reminders and minutes
// recaps for freshly locked meetings.
type Processor struct {
	queue    *queue.Queue
	notifier Notifier
	meetings MeetingStore
	summ     Summarizer
	logger   *zap.Logger
}

// NewProcessor creates the job processor.
func NewProcessor(q *queue.Queue, notifier Notifier, meetings MeetingStore, summ Summarizer, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{queue: q, notifier: notifier, meetings: meetings, summ: summ, logger: logger}
}

// Process executes one job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeDueReminder:
		return p.processDueReminder(ctx, job)
	case queue.JobTypeMinutesRecap:
		return p.processMinutesRecap(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (p *Processor) processDueReminder(ctx context.Context, job *queue.Job) error {
	var payload queue.DueReminderPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	p.notifier.Notify(ctx, payload.AssignedToID, models.NotifTask,
		"Directive Due Soon",
		fmt.Sprintf("%s task %q is due %s.", payload.Priority, payload.Title, payload.DueDate.Format("Jan 2, 15:04")),
		models.LinkTasks, &payload.TaskID)
	p.logger.Debug("due reminder delivered",
		zap.String("task_id", payload.TaskID.String()),
		zap.String("user_id", payload.AssignedToID.String()))
	return nil
}

func (p *Processor) processMinutesRecap(ctx context.Context, job *queue.Job) error {
	var payload queue.MinutesRecapPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	m, err := p.meetings.GetByID(ctx, payload.MeetingID)
	if err != nil {
		return fmt.Errorf("meeting not found: %s", payload.MeetingID)
	}
	if m.Recap != "" {
		p.logger.Info("recap already generated", zap.String("meeting_id", m.ID.String()))
		return nil
	}
	text := m.Minutes.PlainText()
	if text == "" {
		return nil
	}

	recap, err := p.summ.SummarizeMinutes(ctx, text)
	if err != nil {
		return fmt.Errorf("summarize minutes: %w", err)
	}
	if err := p.meetings.SetRecap(ctx, m.ID, recap); err != nil {
		return fmt.Errorf("store recap: %w", err)
	}

	p.logger.Info("minutes recap stored", zap.String("meeting_id", m.ID.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("job worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
