package models

import (
	"time"

	"github.com/google/uuid"
)

// MeetingType distinguishes regular sessions from strategic and travel ones.
type MeetingType string

const (
	MeetingStandard  MeetingType = "Standard"
	MeetingStrategic MeetingType = "Strategic"
	MeetingTravel    MeetingType = "Travel"
)

// Meeting is a scheduled or logged session. Once every attendee has
// signed off the minutes, the record is locked and only readable.
type Meeting struct {
	ID           uuid.UUID            `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	StartTime    time.Time            `json:"start_time"`
	EndTime      time.Time            `json:"end_time"`
	Location     string               `json:"location"`
	Department   Department           `json:"department"`
	Team         Team                 `json:"team"`
	Region       Region               `json:"region"`
	OrganizerID  uuid.UUID            `json:"organizer_id"`
	LeaderID     uuid.UUID            `json:"leader_id"`
	Attendees    []uuid.UUID          `json:"attendees"`
	FinalizedBy  []uuid.UUID          `json:"finalized_by"`
	RejectedBy   map[string]string    `json:"rejected_by,omitempty"` // reserved, never populated
	Minutes      *Minutes             `json:"minutes,omitempty"`
	Recap        string               `json:"recap,omitempty"`
	Type         MeetingType          `json:"type"`
	Recurrence   Recurrence           `json:"recurrence"`
	IsCustomRoom bool                 `json:"is_custom_room"`
	TravelCities string               `json:"travel_cities,omitempty"`
	Attachments  []Attachment         `json:"attachments,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// IsFinalized reports whether every attendee has signed off. A meeting
// without attendees can never be finalized.
func (m *Meeting) IsFinalized() bool {
	if len(m.Attendees) == 0 {
		return false
	}
	signed := make(map[uuid.UUID]struct{}, len(m.FinalizedBy))
	for _, id := range m.FinalizedBy {
		signed[id] = struct{}{}
	}
	for _, id := range m.Attendees {
		if _, ok := signed[id]; !ok {
			return false
		}
	}
	return true
}

// HasFinalized reports whether the given user has personally signed off.
func (m *Meeting) HasFinalized(userID uuid.UUID) bool {
	for _, id := range m.FinalizedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// HasAttendee reports whether the given user is on the attendee roster.
func (m *Meeting) HasAttendee(userID uuid.UUID) bool {
	for _, id := range m.Attendees {
		if id == userID {
			return true
		}
	}
	return false
}

// IsParticipant reports whether the user may edit the meeting before it
// locks: organizer, leader, or attendee.
func (m *Meeting) IsParticipant(userID uuid.UUID) bool {
	return m.OrganizerID == userID || m.LeaderID == userID || m.HasAttendee(userID)
}
