package models

import (
	"time"

	"github.com/google/uuid"
)

// ActionType is the kind of state-changing action recorded in the audit trail.
type ActionType string

const (
	ActionTaskAssigned      ActionType = "Task Assigned"
	ActionTaskStatusUpdate  ActionType = "Task Status Update"
	ActionTaskDeleted       ActionType = "Task Record Removed"
	ActionMeetingScheduled  ActionType = "Meeting Scheduled"
	ActionMeetingUpdated    ActionType = "Meeting Updated"
	ActionMeetingFinalized  ActionType = "Meeting Finalized"
	ActionMeetingRejected   ActionType = "Meeting Records Rejected"
	ActionLogin             ActionType = "User Login"
	ActionPersonnelUpdate   ActionType = "Personnel Record Updated"
	ActionDesignationAdded  ActionType = "New Designation Created"
)

// AuditLog is one append-only record of a state-changing action. Entries
// are never mutated or deleted; the sequence number carries causal order.
type AuditLog struct {
	ID         uuid.UUID  `json:"id"`
	Seq        int64      `json:"seq"`
	Timestamp  time.Time  `json:"timestamp"`
	UserID     uuid.UUID  `json:"user_id"`
	Action     ActionType `json:"action"`
	Details    string     `json:"details"`
	Department Department `json:"department"`
}
