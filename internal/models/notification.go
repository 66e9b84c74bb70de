package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies a feed entry.
type NotificationType string

const (
	NotifTask      NotificationType = "Task"
	NotifMeeting   NotificationType = "Meeting"
	NotifSystem    NotificationType = "System"
	NotifRejection NotificationType = "Rejection"
)

// LinkTarget is the in-app surface a notification deep-links to.
type LinkTarget string

const (
	LinkTasks    LinkTarget = "tasks"
	LinkCalendar LinkTarget = "calendar"
	LinkLogs     LinkTarget = "logs"
)

// AppNotification is one entry in a user's notification feed. Dismissed
// individually by the recipient or marked read in bulk.
type AppNotification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Read        bool             `json:"read"`
	LinkTo      LinkTarget       `json:"link_to,omitempty"`
	ReferenceID *uuid.UUID       `json:"reference_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
