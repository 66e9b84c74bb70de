package tasks

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/swisspharma/opsboard-backend/internal/models"
)

func TestCheckTransitionTable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		from models.TaskStatus
		to   models.TaskStatus
		want error
	}{
		{"intake approve", models.TaskPendingApproval, models.TaskApproved, nil},
		{"intake reject", models.TaskPendingApproval, models.TaskRejected, nil},
		{"approved to in progress", models.TaskApproved, models.TaskInProgress, nil},
		{"approved to hold", models.TaskApproved, models.TaskPending, nil},
		{"in progress to hold", models.TaskInProgress, models.TaskPending, nil},
		{"in progress to completed", models.TaskInProgress, models.TaskCompleted, nil},
		{"hold back to approved", models.TaskPending, models.TaskApproved, nil},
		{"hold to in progress", models.TaskPending, models.TaskInProgress, nil},
		{"skip intake", models.TaskPendingApproval, models.TaskInProgress, ErrInvalidTransition},
		{"skip to completed", models.TaskApproved, models.TaskCompleted, ErrInvalidTransition},
		{"completed is terminal", models.TaskCompleted, models.TaskInProgress, ErrInvalidTransition},
		{"rejected is terminal", models.TaskRejected, models.TaskApproved, ErrInvalidTransition},
		{"late rejection", models.TaskInProgress, models.TaskRejected, ErrInvalidTransition},
	}

	assignee := uuid.New()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			task := &models.Task{Status: tc.from, AssignedToID: assignee}
			in := TransitionInput{Reason: "insufficient scope"}
			err := CheckTransition(task, assignee, tc.to, in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("CheckTransition(%s -> %s) = %v, want %v", tc.from, tc.to, err, tc.want)
			}
		})
	}
}

func TestCheckTransitionSameStatusIsNoChange(t *testing.T) {
	t.Parallel()

	assignee := uuid.New()
	for _, status := range []models.TaskStatus{
		models.TaskPendingApproval, models.TaskApproved, models.TaskInProgress,
		models.TaskPending, models.TaskCompleted, models.TaskRejected,
	} {
		task := &models.Task{Status: status, AssignedToID: assignee}
		if err := CheckTransition(task, assignee, status, TransitionInput{}); !errors.Is(err, ErrNoChange) {
			t.Fatalf("same-status %s: got %v, want ErrNoChange", status, err)
		}
	}
}

func TestCheckTransitionRejectsNonAssignee(t *testing.T) {
	t.Parallel()

	task := &models.Task{Status: models.TaskPendingApproval, AssignedToID: uuid.New()}
	err := CheckTransition(task, uuid.New(), models.TaskApproved, TransitionInput{})
	if !errors.Is(err, ErrNotAssignee) {
		t.Fatalf("got %v, want ErrNotAssignee", err)
	}
}

func TestCheckTransitionRejectionRequiresReason(t *testing.T) {
	t.Parallel()

	assignee := uuid.New()
	task := &models.Task{Status: models.TaskPendingApproval, AssignedToID: assignee}

	err := CheckTransition(task, assignee, models.TaskRejected, TransitionInput{Reason: "   "})
	if !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("blank reason: got %v, want ErrReasonRequired", err)
	}
	if err := CheckTransition(task, assignee, models.TaskRejected, TransitionInput{Reason: "out of scope"}); err != nil {
		t.Fatalf("valid rejection: got %v", err)
	}
}

func TestApplyTransition(t *testing.T) {
	t.Parallel()

	task := &models.Task{Status: models.TaskPendingApproval}
	ApplyTransition(task, models.TaskRejected, TransitionInput{Reason: "  duplicate directive  "})
	if task.Status != models.TaskRejected {
		t.Fatalf("status = %s, want Rejected", task.Status)
	}
	if task.RejectionReason != "duplicate directive" {
		t.Fatalf("reason = %q, want trimmed reason", task.RejectionReason)
	}

	task = &models.Task{Status: models.TaskInProgress}
	atts := []models.Attachment{{Name: "report.pdf", Key: "attachments/x/report.pdf"}}
	ApplyTransition(task, models.TaskCompleted, TransitionInput{
		CompletionMessage:     "validated in batch 7",
		CompletionAttachments: atts,
	})
	if task.Status != models.TaskCompleted {
		t.Fatalf("status = %s, want Completed", task.Status)
	}
	if task.CompletionMessage != "validated in batch 7" {
		t.Fatalf("completion message = %q", task.CompletionMessage)
	}
	if len(task.CompletionAttachments) != 1 {
		t.Fatalf("completion attachments = %d, want 1", len(task.CompletionAttachments))
	}
}
