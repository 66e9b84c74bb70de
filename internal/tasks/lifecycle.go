package tasks

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/swisspharma/opsboard-backend/internal/models"
)

var (
	// ErrInvalidTransition means the requested status change is not in
	// the transition table for the task's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotAssignee means the actor does not own the task's lifecycle.
	ErrNotAssignee = errors.New("only the assignee may update this task")
	// ErrReasonRequired means a rejection was requested without a reason.
	ErrReasonRequired = errors.New("rejection requires a non-empty reason")
	// ErrNoChange means the requested status equals the current one.
	// Callers treat it as an idempotent no-op and fire no side effects.
	ErrNoChange = errors.New("status unchanged")
	// ErrNotDeletable means deletion was requested before completion.
	ErrNotDeletable = errors.New("only completed tasks may be removed")
)

// transitions is the legal status graph. Completed and Rejected are
// terminal; Pending is the reversible on-hold state.
var transitions = map[models.TaskStatus][]models.TaskStatus{
	models.TaskPendingApproval: {models.TaskApproved, models.TaskRejected},
	models.TaskApproved:        {models.TaskInProgress, models.TaskPending},
	models.TaskInProgress:      {models.TaskPending, models.TaskCompleted},
	models.TaskPending:         {models.TaskApproved, models.TaskInProgress},
	models.TaskCompleted:       {},
	models.TaskRejected:        {},
}

// TransitionInput carries the optional data a transition may require.
type TransitionInput struct {
	Reason                string
	CompletionMessage     string
	CompletionAttachments []models.Attachment
}

// CheckTransition validates a requested status change against the
// transition table, the acting user, and the required input. The UI is
// expected to offer only legal transitions; this re-validates anyway.
func CheckTransition(t *models.Task, actorID uuid.UUID, to models.TaskStatus, in TransitionInput) error {
	if actorID != t.AssignedToID {
		return ErrNotAssignee
	}
	if to == t.Status {
		return ErrNoChange
	}
	legal := false
	for _, next := range transitions[t.Status] {
		if next == to {
			legal = true
			break
		}
	}
	if !legal {
		return ErrInvalidTransition
	}
	if to == models.TaskRejected && strings.TrimSpace(in.Reason) == "" {
		return ErrReasonRequired
	}
	return nil
}

// ApplyTransition mutates the task for an already-validated transition.
func ApplyTransition(t *models.Task, to models.TaskStatus, in TransitionInput) {
	t.Status = to
	switch to {
	case models.TaskRejected:
		t.RejectionReason = strings.TrimSpace(in.Reason)
	case models.TaskCompleted:
		t.CompletionMessage = in.CompletionMessage
		if len(in.CompletionAttachments) > 0 {
			t.CompletionAttachments = in.CompletionAttachments
		}
	}
}
