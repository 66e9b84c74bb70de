package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swisspharma/opsboard-backend/internal/authz"
	"github.com/swisspharma/opsboard-backend/internal/models"
)

var (
	// ErrNotFound means the referenced task is absent from the store.
	ErrNotFound = errors.New("task not found")
	// ErrNotAuthorized means the actor lacks the capability for the operation.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrValidation means a mandatory field was missing on create.
	ErrValidation = errors.New("title, assignee and due date are required")
)

// Store is the task persistence the engine needs.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Create(ctx context.Context, t *models.Task) error
	UpdateLifecycle(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Directory resolves user ids to personnel records for notification text.
type Directory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Notifier fans a system event out to one user's notification feed.
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, typ models.NotificationType, title, message string, linkTo models.LinkTarget, referenceID *uuid.UUID)
}

// Auditor records state-changing actions.
type Auditor interface {
	Record(ctx context.Context, actor *models.User, action models.ActionType, details string)
}

// Service is the task lifecycle engine: it enforces legal transitions
// and produces the notification and audit side effects of each one.
type Service struct {
	store    Store
	users    Directory
	notifier Notifier
	auditor  Auditor
	logger   *zap.Logger
}

// NewService creates the task lifecycle engine.
func NewService(store Store, users Directory, notifier Notifier, auditor Auditor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, users: users, notifier: notifier, auditor: auditor, logger: logger}
}

// Transition moves a task to a new status on behalf of the actor.
// Requesting the current status is an idempotent no-op: no notification,
// no audit entry. Side effects fire only when the status actually changed.
func (s *Service) Transition(ctx context.Context, actor *models.User, taskID uuid.UUID, to models.TaskStatus, in TransitionInput) (*models.Task, error) {
	task, err := s.store.GetByID(ctx, taskID)
	if err != nil {
		return nil, ErrNotFound
	}

	if err := CheckTransition(task, actor.ID, to, in); err != nil {
		if errors.Is(err, ErrNoChange) {
			return task, nil
		}
		return nil, err
	}

	from := task.Status
	ApplyTransition(task, to, in)
	if err := s.store.UpdateLifecycle(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	switch {
	case to == models.TaskApproved && from == models.TaskPendingApproval:
		s.notifier.Notify(ctx, task.AssignedByID, models.NotifTask,
			"Task Intake Confirmed",
			fmt.Sprintf("%s has acknowledged and accepted responsibility for %q.", s.userName(ctx, task.AssignedToID), task.Title),
			models.LinkTasks, &task.ID)
	case to == models.TaskCompleted:
		s.notifier.Notify(ctx, task.AssignedByID, models.NotifTask,
			"Task Finalized",
			fmt.Sprintf("%q has been marked as COMPLETED by %s.", task.Title, s.userName(ctx, task.AssignedToID)),
			models.LinkTasks, &task.ID)
	}

	details := fmt.Sprintf("Task %q moved from %s to %s", task.Title, from, to)
	if to == models.TaskRejected {
		details += fmt.Sprintf(" (reason: %s)", task.RejectionReason)
	}
	s.auditor.Record(ctx, actor, models.ActionTaskStatusUpdate, details)
	return task, nil
}

// Proposal is one requested directive, either from a meeting save or
// from the standalone assignment flow.
type Proposal struct {
	Title        string
	Description  string
	AssignedToID *uuid.UUID
	DueDate      time.Time
	Priority     models.TaskPriority
	Recurrence   models.Recurrence
	Attachments  []models.Attachment
}

// IssueBatch creates one task per proposal on behalf of the issuer.
// Proposals without a resolvable assignee are silently dropped, matching
// how unmatched AI-suggested owners are filtered before persistence.
// Proposals with an assignee but no title or due date fail the batch.
func (s *Service) IssueBatch(ctx context.Context, issuer *models.User, meetingID *uuid.UUID, proposals []Proposal) ([]models.Task, error) {
	var created []models.Task
	for _, p := range proposals {
		if p.AssignedToID == nil {
			continue
		}
		if p.Title == "" || p.DueDate.IsZero() {
			return nil, ErrValidation
		}
		task := models.Task{
			Title:        p.Title,
			Description:  p.Description,
			AssignedToID: *p.AssignedToID,
			AssignedByID: issuer.ID,
			MeetingID:    meetingID,
			DueDate:      p.DueDate,
			Status:       models.TaskPendingApproval,
			Priority:     p.Priority,
			Recurrence:   p.Recurrence,
			Attachments:  p.Attachments,
		}
		if task.Priority == "" {
			task.Priority = models.PriorityQ2
		}
		if task.Recurrence == "" {
			task.Recurrence = models.RecurrenceNone
		}
		if err := s.store.Create(ctx, &task); err != nil {
			return nil, fmt.Errorf("create task: %w", err)
		}
		s.notifyIssued(ctx, issuer, &task, meetingID != nil)
		created = append(created, task)
	}

	if len(created) > 0 {
		if meetingID != nil {
			s.auditor.Record(ctx, issuer, models.ActionTaskAssigned,
				fmt.Sprintf("Issued %d directive(s) from meeting minutes", len(created)))
		} else {
			for i := range created {
				s.auditor.Record(ctx, issuer, models.ActionTaskAssigned,
					fmt.Sprintf("Direct task assigned to %s", s.userName(ctx, created[i].AssignedToID)))
			}
		}
	}
	return created, nil
}

func (s *Service) notifyIssued(ctx context.Context, issuer *models.User, task *models.Task, fromMeeting bool) {
	if fromMeeting {
		s.notifier.Notify(ctx, task.AssignedToID, models.NotifTask,
			"Directive Received",
			fmt.Sprintf("New %s task %q requires your intake acknowledgment.", task.Priority, task.Title),
			models.LinkTasks, &task.ID)
		return
	}
	s.notifier.Notify(ctx, task.AssignedToID, models.NotifTask,
		"Direct Directive Issued",
		fmt.Sprintf("%s has assigned you a %s task. Explicit intake required.", issuer.FullName, task.Priority),
		models.LinkTasks, &task.ID)
}

// Delete purges a completed task from the board. Deleting an absent id
// is a silent no-op. Only users with delete rights may purge, and only
// from the Completed state.
func (s *Service) Delete(ctx context.Context, actor *models.User, taskID uuid.UUID) error {
	task, err := s.store.GetByID(ctx, taskID)
	if err != nil {
		return nil
	}
	if !authz.Can(actor, authz.ActionTaskDelete, task) {
		return ErrNotAuthorized
	}
	if task.Status != models.TaskCompleted {
		return ErrNotDeletable
	}
	if err := s.store.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.auditor.Record(ctx, actor, models.ActionTaskDeleted,
		fmt.Sprintf("Completed task %q was purged from the active board", task.Title))
	return nil
}

func (s *Service) userName(ctx context.Context, id uuid.UUID) string {
	u, err := s.users.GetByID(ctx, id)
	if err != nil || u == nil {
		return "the assignee"
	}
	return u.FullName
}
