package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	// TaskPendingApproval means the assignee has not yet acknowledged intake.
	TaskPendingApproval TaskStatus = "Pending Approval"
	// TaskApproved means the assignee has acknowledged the directive.
	TaskApproved TaskStatus = "Approved"
	// TaskPending means the task is on hold, reversible by the assignee.
	TaskPending TaskStatus = "Pending"
	// TaskInProgress means the assignee is actively working the task.
	TaskInProgress TaskStatus = "In Progress"
	// TaskCompleted is terminal; only deletion is legal afterwards.
	TaskCompleted TaskStatus = "Completed"
	// TaskRejected is terminal and carries a mandatory reason.
	TaskRejected TaskStatus = "Rejected"
)

// TaskPriority ranks tasks; Q1 is the most critical.
type TaskPriority string

const (
	PriorityQ1 TaskPriority = "Q1"
	PriorityQ2 TaskPriority = "Q2"
	PriorityQ3 TaskPriority = "Q3"
)

// Recurrence is how often a task or meeting repeats.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "None"
	RecurrenceDaily   Recurrence = "Daily"
	RecurrenceWeekly  Recurrence = "Weekly"
	RecurrenceMonthly Recurrence = "Monthly"
)

// Attachment references an uploaded object in S3.
type Attachment struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Task is a unit of work issued by one user to another. The issuer owns
// authorship; the assignee owns the lifecycle until completion.
type Task struct {
	ID                    uuid.UUID    `json:"id"`
	Title                 string       `json:"title"`
	Description           string       `json:"description"`
	AssignedToID          uuid.UUID    `json:"assigned_to_id"`
	AssignedByID          uuid.UUID    `json:"assigned_by_id"`
	MeetingID             *uuid.UUID   `json:"meeting_id,omitempty"`
	DueDate               time.Time    `json:"due_date"`
	Status                TaskStatus   `json:"status"`
	Priority              TaskPriority `json:"priority"`
	Recurrence            Recurrence   `json:"recurrence"`
	RejectionReason       string       `json:"rejection_reason,omitempty"`
	CompletionMessage     string       `json:"completion_message,omitempty"`
	Attachments           []Attachment `json:"attachments,omitempty"`
	CompletionAttachments []Attachment `json:"completion_attachments,omitempty"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}
