package meetings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swisspharma/opsboard-backend/internal/models"
	"github.com/swisspharma/opsboard-backend/internal/tasks"
	"github.com/swisspharma/opsboard-backend/pkg/queue"
)

var (
	// ErrNotFound means the referenced meeting is absent from the store.
	ErrNotFound = errors.New("meeting not found")
	// ErrLocked means the record may no longer be edited: either every
	// attendee has signed off, or the actor personally has.
	ErrLocked = errors.New("meeting record is locked")
	// ErrNotParticipant means the actor is neither organizer, leader
	// nor attendee of the meeting.
	ErrNotParticipant = errors.New("not a participant of this meeting")
	// ErrNotAttendee means sign-off was requested by someone outside
	// the attendee roster.
	ErrNotAttendee = errors.New("only attendees may sign off minutes")
	// ErrValidation means a mandatory field was missing.
	ErrValidation = errors.New("title, start time and end time are required")
)

// Store is the meeting persistence the engine needs.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error)
	Create(ctx context.Context, m *models.Meeting) error
	Update(ctx context.Context, m *models.Meeting) error
	AddSignOff(ctx context.Context, meetingID, userID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Issuer turns directive proposals from a meeting save into tasks.
type Issuer interface {
	IssueBatch(ctx context.Context, issuer *models.User, meetingID *uuid.UUID, proposals []tasks.Proposal) ([]models.Task, error)
}

// Notifier fans a system event out to one user's notification feed.
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, typ models.NotificationType, title, message string, linkTo models.LinkTarget, referenceID *uuid.UUID)
}

// Auditor records state-changing actions.
type Auditor interface {
	Record(ctx context.Context, actor *models.User, action models.ActionType, details string)
}

// Jobs enqueues background work.
type Jobs interface {
	Enqueue(ctx context.Context, typ queue.JobType, payload interface{}) error
}

// Service is the meeting engine: invitation fan-out on scheduling,
// participant-gated edits, and the sign-off consensus that locks the
// official record.
type Service struct {
	store    Store
	issuer   Issuer
	notifier Notifier
	auditor  Auditor
	jobs     Jobs
	logger   *zap.Logger
}

// NewService creates the meeting engine.
func NewService(store Store, issuer Issuer, notifier Notifier, auditor Auditor, jobs Jobs, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, issuer: issuer, notifier: notifier, auditor: auditor, jobs: jobs, logger: logger}
}

// Create schedules a meeting, notifies every attendee and records the
// scheduling in the audit trail.
func (s *Service) Create(ctx context.Context, organizer *models.User, m *models.Meeting) error {
	if m.Title == "" || m.StartTime.IsZero() || m.EndTime.IsZero() {
		return ErrValidation
	}
	m.OrganizerID = organizer.ID
	if m.LeaderID == uuid.Nil {
		m.LeaderID = organizer.ID
	}
	if m.Type == "" {
		m.Type = models.MeetingStandard
	}
	if m.Recurrence == "" {
		m.Recurrence = models.RecurrenceNone
	}
	if err := s.store.Create(ctx, m); err != nil {
		return fmt.Errorf("create meeting: %w", err)
	}

	for _, attendeeID := range m.Attendees {
		if attendeeID == organizer.ID {
			continue
		}
		s.notifier.Notify(ctx, attendeeID, models.NotifMeeting,
			"Meeting Invitation",
			fmt.Sprintf("%s has scheduled %q for %s.", organizer.FullName, m.Title, m.StartTime.Format("Jan 2, 15:04")),
			models.LinkCalendar, &m.ID)
	}
	s.auditor.Record(ctx, organizer, models.ActionMeetingScheduled,
		fmt.Sprintf("Scheduled: %q (%s) with %d attendee(s)", m.Title, m.Type, len(m.Attendees)))
	return nil
}

// UpdateInput carries the editable meeting fields plus any directive
// proposals extracted from the minutes during the same save.
type UpdateInput struct {
	Meeting   *models.Meeting
	Proposals []tasks.Proposal
}

// Update saves edits to a meeting record. Editing is refused once the
// record is fully signed off, and individually refused to anyone who
// has personally signed: a signature fixes the record as that user saw
// it. Directive proposals riding along with the save are issued as
// tasks linked to the meeting.
func (s *Service) Update(ctx context.Context, actor *models.User, meetingID uuid.UUID, in UpdateInput) (*models.Meeting, error) {
	existing, err := s.store.GetByID(ctx, meetingID)
	if err != nil {
		return nil, ErrNotFound
	}
	if existing.IsFinalized() || existing.HasFinalized(actor.ID) {
		return nil, ErrLocked
	}
	if !existing.IsParticipant(actor.ID) && !actor.Role.IsExecutive() {
		return nil, ErrNotParticipant
	}

	m := in.Meeting
	m.ID = existing.ID
	m.OrganizerID = existing.OrganizerID
	m.FinalizedBy = existing.FinalizedBy
	if m.LeaderID == uuid.Nil {
		m.LeaderID = existing.LeaderID
	}
	if err := s.store.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update meeting: %w", err)
	}

	if len(in.Proposals) > 0 {
		if _, err := s.issuer.IssueBatch(ctx, actor, &m.ID, in.Proposals); err != nil {
			return nil, err
		}
	}

	s.auditor.Record(ctx, actor, models.ActionMeetingUpdated,
		fmt.Sprintf("Updated records for %q", m.Title))

	saved, err := s.store.GetByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("reload meeting: %w", err)
	}
	// Shrinking the roster can leave every remaining attendee already
	// signed off; that edit is the locking transition and carries the
	// same side effects as a final signature.
	if saved.IsFinalized() {
		s.lockRecord(ctx, actor, saved)
	}
	return saved, nil
}

// lockRecord emits the one-time side effects of a meeting reaching
// full consensus: the lock audit entry, the organizer notification
// and the recap job for the minutes. Callers invoke it only on the
// transition into the locked state.
func (s *Service) lockRecord(ctx context.Context, actor *models.User, m *models.Meeting) {
	s.auditor.Record(ctx, actor, models.ActionMeetingFinalized,
		fmt.Sprintf("OFFICIAL RECORD LOCKED: %q is now finalized by all attendees", m.Title))
	s.notifier.Notify(ctx, m.OrganizerID, models.NotifMeeting,
		"Record Locked",
		fmt.Sprintf("All attendees have signed off %q. The record is now read-only.", m.Title),
		models.LinkCalendar, &m.ID)
	if m.Minutes != nil {
		if err := s.jobs.Enqueue(ctx, queue.JobTypeMinutesRecap, queue.MinutesRecapPayload{MeetingID: m.ID}); err != nil {
			s.logger.Error("failed to enqueue minutes recap", zap.String("meeting_id", m.ID.String()), zap.Error(err))
		}
	}
}

// Finalize records the actor's sign-off on the minutes. Signing twice
// is a harmless no-op. When the last outstanding attendee signs, the
// record locks: exactly one audit entry marks the lock, and a recap
// job is queued for the minutes.
func (s *Service) Finalize(ctx context.Context, actor *models.User, meetingID uuid.UUID) (*models.Meeting, error) {
	m, err := s.store.GetByID(ctx, meetingID)
	if err != nil {
		return nil, ErrNotFound
	}
	if !m.HasAttendee(actor.ID) {
		return nil, ErrNotAttendee
	}

	added, err := s.store.AddSignOff(ctx, meetingID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("record sign-off: %w", err)
	}
	if !added {
		return m, nil
	}

	m, err = s.store.GetByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("reload meeting: %w", err)
	}

	s.auditor.Record(ctx, actor, models.ActionMeetingFinalized,
		fmt.Sprintf("Signed off minutes of %q", m.Title))

	if m.IsFinalized() {
		s.lockRecord(ctx, actor, m)
	}
	return m, nil
}

// Delete removes a meeting. Only the organizer or an executive may
// delete, and never once the record is locked.
func (s *Service) Delete(ctx context.Context, actor *models.User, meetingID uuid.UUID) error {
	m, err := s.store.GetByID(ctx, meetingID)
	if err != nil {
		return nil
	}
	if m.OrganizerID != actor.ID && !actor.Role.IsExecutive() {
		return ErrNotParticipant
	}
	if m.IsFinalized() {
		return ErrLocked
	}
	if err := s.store.Delete(ctx, meetingID); err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}
	s.auditor.Record(ctx, actor, models.ActionMeetingUpdated,
		fmt.Sprintf("Removed meeting %q from the calendar", m.Title))
	return nil
}
