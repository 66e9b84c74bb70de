package meetings

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/swisspharma/opsboard-backend/internal/models"
	"github.com/swisspharma/opsboard-backend/internal/tasks"
	"github.com/swisspharma/opsboard-backend/pkg/queue"
)

type fakeStore struct {
	meetings map[uuid.UUID]*models.Meeting
}

func newFakeStore(ms ...*models.Meeting) *fakeStore {
	s := &fakeStore{meetings: make(map[uuid.UUID]*models.Meeting)}
	for _, m := range ms {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		s.meetings[m.ID] = m
	}
	return s
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Meeting, error) {
	m, ok := s.meetings[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *m
	cp.Attendees = append([]uuid.UUID(nil), m.Attendees...)
	cp.FinalizedBy = append([]uuid.UUID(nil), m.FinalizedBy...)
	return &cp, nil
}

func (s *fakeStore) Create(_ context.Context, m *models.Meeting) error {
	m.ID = uuid.New()
	cp := *m
	s.meetings[m.ID] = &cp
	return nil
}

func (s *fakeStore) Update(_ context.Context, m *models.Meeting) error {
	existing, ok := s.meetings[m.ID]
	if !ok {
		return errors.New("no rows")
	}
	cp := *m
	cp.FinalizedBy = existing.FinalizedBy
	s.meetings[m.ID] = &cp
	return nil
}

func (s *fakeStore) AddSignOff(_ context.Context, meetingID, userID uuid.UUID) (bool, error) {
	m, ok := s.meetings[meetingID]
	if !ok {
		return false, errors.New("no rows")
	}
	for _, id := range m.FinalizedBy {
		if id == userID {
			return false, nil
		}
	}
	m.FinalizedBy = append(m.FinalizedBy, userID)
	return true, nil
}

func (s *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.meetings, id)
	return nil
}

type fakeIssuer struct {
	batches [][]tasks.Proposal
}

func (f *fakeIssuer) IssueBatch(_ context.Context, _ *models.User, _ *uuid.UUID, proposals []tasks.Proposal) ([]models.Task, error) {
	f.batches = append(f.batches, proposals)
	return make([]models.Task, len(proposals)), nil
}

type sentNotification struct {
	recipient uuid.UUID
	title     string
}

type fakeNotifier struct {
	sent []sentNotification
}

func (n *fakeNotifier) Notify(_ context.Context, recipientID uuid.UUID, _ models.NotificationType, title, _ string, _ models.LinkTarget, _ *uuid.UUID) {
	n.sent = append(n.sent, sentNotification{recipient: recipientID, title: title})
}

type auditEntry struct {
	action  models.ActionType
	details string
}

type fakeAuditor struct {
	entries []auditEntry
}

func (a *fakeAuditor) Record(_ context.Context, _ *models.User, action models.ActionType, details string) {
	a.entries = append(a.entries, auditEntry{action: action, details: details})
}

func (a *fakeAuditor) lockEntries() []auditEntry {
	var out []auditEntry
	for _, e := range a.entries {
		if strings.Contains(e.details, "OFFICIAL RECORD LOCKED") {
			out = append(out, e)
		}
	}
	return out
}

type enqueuedJob struct {
	typ     queue.JobType
	payload interface{}
}

type fakeJobs struct {
	jobs []enqueuedJob
}

func (j *fakeJobs) Enqueue(_ context.Context, typ queue.JobType, payload interface{}) error {
	j.jobs = append(j.jobs, enqueuedJob{typ: typ, payload: payload})
	return nil
}

func fixture() (organizer *models.User, attendees []*models.User, meeting *models.Meeting) {
	organizer = &models.User{ID: uuid.New(), FullName: "Chairman Rizvi", Role: models.RoleChairman, Department: models.DeptExecutive}
	attendees = []*models.User{
		{ID: uuid.New(), FullName: "Dr. Amara Qureshi", Role: models.RoleHOD, Department: models.DeptQA},
		{ID: uuid.New(), FullName: "Bilal Hashmi", Role: models.RoleSenior, Department: models.DeptQA},
	}
	meeting = &models.Meeting{
		Title:       "Q3 batch release review",
		StartTime:   time.Now().Add(24 * time.Hour),
		EndTime:     time.Now().Add(25 * time.Hour),
		OrganizerID: organizer.ID,
		LeaderID:    organizer.ID,
		Attendees:   []uuid.UUID{attendees[0].ID, attendees[1].ID},
		Minutes:     models.TextMinutes("Release criteria discussed. @Bilal to compile trend data."),
		Type:        models.MeetingStandard,
	}
	return organizer, attendees, meeting
}

func newTestService(store *fakeStore, issuer *fakeIssuer, notifier *fakeNotifier, auditor *fakeAuditor, jobs *fakeJobs) *Service {
	return NewService(store, issuer, notifier, auditor, jobs, nil)
}

func TestCreateNotifiesAttendees(t *testing.T) {
	t.Parallel()

	organizer, _, meeting := fixture()
	store := newFakeStore()
	notifier := &fakeNotifier{}
	auditor := &fakeAuditor{}
	svc := newTestService(store, &fakeIssuer{}, notifier, auditor, &fakeJobs{})

	if err := svc.Create(context.Background(), organizer, meeting); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(notifier.sent) != 2 {
		t.Fatalf("invitations = %d, want 2", len(notifier.sent))
	}
	if len(auditor.entries) != 1 || auditor.entries[0].action != models.ActionMeetingScheduled {
		t.Fatalf("schedule audit: %+v", auditor.entries)
	}
	if !strings.Contains(auditor.entries[0].details, "Scheduled:") {
		t.Fatalf("audit details = %q", auditor.entries[0].details)
	}
}

func TestFinalizeConsensusLocksOnce(t *testing.T) {
	t.Parallel()

	organizer, attendees, meeting := fixture()
	store := newFakeStore(meeting)
	notifier := &fakeNotifier{}
	auditor := &fakeAuditor{}
	jobs := &fakeJobs{}
	svc := newTestService(store, &fakeIssuer{}, notifier, auditor, jobs)

	// First attendee signs: no lock yet.
	m, err := svc.Finalize(context.Background(), attendees[0], meeting.ID)
	if err != nil {
		t.Fatalf("first sign-off: %v", err)
	}
	if m.IsFinalized() {
		t.Fatal("meeting locked after a single sign-off")
	}
	if len(jobs.jobs) != 0 {
		t.Fatalf("recap queued before lock: %+v", jobs.jobs)
	}

	// Organizer is not on the roster; the count of outstanding
	// signatures is attendees only.
	if _, err := svc.Finalize(context.Background(), organizer, meeting.ID); !errors.Is(err, ErrNotAttendee) {
		t.Fatalf("organizer sign-off: got %v", err)
	}

	// Last attendee signs: the record locks.
	m, err = svc.Finalize(context.Background(), attendees[1], meeting.ID)
	if err != nil {
		t.Fatalf("final sign-off: %v", err)
	}
	if !m.IsFinalized() {
		t.Fatal("meeting not locked after full consensus")
	}
	if locks := auditor.lockEntries(); len(locks) != 1 {
		t.Fatalf("lock audit entries = %d, want exactly 1", len(locks))
	}
	if len(jobs.jobs) != 1 || jobs.jobs[0].typ != queue.JobTypeMinutesRecap {
		t.Fatalf("recap job: %+v", jobs.jobs)
	}

	// A re-submitted sign-off changes nothing.
	if _, err := svc.Finalize(context.Background(), attendees[1], meeting.ID); err != nil {
		t.Fatalf("repeat sign-off: %v", err)
	}
	if locks := auditor.lockEntries(); len(locks) != 1 {
		t.Fatalf("lock audit entries after repeat = %d, want exactly 1", len(locks))
	}
	if len(jobs.jobs) != 1 {
		t.Fatalf("recap jobs after repeat = %d, want 1", len(jobs.jobs))
	}
}

func TestUpdateRosterShrinkLocksRecord(t *testing.T) {
	t.Parallel()

	_, attendees, meeting := fixture()
	store := newFakeStore(meeting)
	notifier := &fakeNotifier{}
	auditor := &fakeAuditor{}
	jobs := &fakeJobs{}
	svc := newTestService(store, &fakeIssuer{}, notifier, auditor, jobs)

	if _, err := svc.Finalize(context.Background(), attendees[0], meeting.ID); err != nil {
		t.Fatalf("sign-off: %v", err)
	}

	// The unsigned attendee drops themselves from the roster; every
	// remaining attendee has already signed, so this edit is the
	// locking transition.
	edit := *meeting
	edit.Attendees = []uuid.UUID{attendees[0].ID}
	m, err := svc.Update(context.Background(), attendees[1], meeting.ID, UpdateInput{Meeting: &edit})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !m.IsFinalized() {
		t.Fatal("meeting not locked after roster shrink")
	}
	if locks := auditor.lockEntries(); len(locks) != 1 {
		t.Fatalf("lock audits = %d, want 1", len(locks))
	}
	if len(jobs.jobs) != 1 || jobs.jobs[0].typ != queue.JobTypeMinutesRecap {
		t.Fatalf("recap jobs: %+v", jobs.jobs)
	}
	var locked int
	for _, n := range notifier.sent {
		if n.title == "Record Locked" {
			locked++
		}
	}
	if locked != 1 {
		t.Fatalf("lock notifications = %d, want 1", locked)
	}

	// A later re-sign by the remaining attendee is a no-op and cannot
	// fire the side effects a second time.
	if _, err := svc.Finalize(context.Background(), attendees[0], meeting.ID); err != nil {
		t.Fatalf("repeat sign-off: %v", err)
	}
	if locks := auditor.lockEntries(); len(locks) != 1 {
		t.Fatalf("lock audits after re-sign = %d, want 1", len(locks))
	}
	if len(jobs.jobs) != 1 {
		t.Fatalf("recap jobs after re-sign = %d, want 1", len(jobs.jobs))
	}
}

func TestUpdateRefusedOncePersonallySigned(t *testing.T) {
	t.Parallel()

	_, attendees, meeting := fixture()
	store := newFakeStore(meeting)
	svc := newTestService(store, &fakeIssuer{}, &fakeNotifier{}, &fakeAuditor{}, &fakeJobs{})

	if _, err := svc.Finalize(context.Background(), attendees[0], meeting.ID); err != nil {
		t.Fatalf("sign-off: %v", err)
	}

	edit := *meeting
	edit.Title = "Edited after my own signature"
	if _, err := svc.Update(context.Background(), attendees[0], meeting.ID, UpdateInput{Meeting: &edit}); !errors.Is(err, ErrLocked) {
		t.Fatalf("signed attendee edit: got %v", err)
	}

	// The other attendee has not signed and may still edit.
	edit2 := *meeting
	edit2.Title = "Amended trend data owner"
	updated, err := svc.Update(context.Background(), attendees[1], meeting.ID, UpdateInput{Meeting: &edit2})
	if err != nil {
		t.Fatalf("unsigned attendee edit: %v", err)
	}
	if updated.Title != "Amended trend data owner" {
		t.Fatalf("title = %q", updated.Title)
	}
	// The first attendee's signature survives the edit.
	if !updated.HasFinalized(attendees[0].ID) {
		t.Fatal("existing sign-off lost on edit")
	}
}

func TestUpdateRefusedWhenFullyLocked(t *testing.T) {
	t.Parallel()

	organizer, attendees, meeting := fixture()
	store := newFakeStore(meeting)
	svc := newTestService(store, &fakeIssuer{}, &fakeNotifier{}, &fakeAuditor{}, &fakeJobs{})

	for _, a := range attendees {
		if _, err := svc.Finalize(context.Background(), a, meeting.ID); err != nil {
			t.Fatalf("sign-off: %v", err)
		}
	}

	edit := *meeting
	edit.Title = "Post-lock tampering"
	// Even the Chairman cannot edit a locked record.
	if _, err := svc.Update(context.Background(), organizer, meeting.ID, UpdateInput{Meeting: &edit}); !errors.Is(err, ErrLocked) {
		t.Fatalf("post-lock edit: got %v", err)
	}
}

func TestUpdateRejectsOutsiders(t *testing.T) {
	t.Parallel()

	_, _, meeting := fixture()
	store := newFakeStore(meeting)
	svc := newTestService(store, &fakeIssuer{}, &fakeNotifier{}, &fakeAuditor{}, &fakeJobs{})

	outsider := &models.User{ID: uuid.New(), FullName: "Unrelated Staff", Role: models.RoleJunior, Department: models.DeptSales}
	edit := *meeting
	if _, err := svc.Update(context.Background(), outsider, meeting.ID, UpdateInput{Meeting: &edit}); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("outsider edit: got %v", err)
	}
}

func TestUpdateIssuesRidingProposals(t *testing.T) {
	t.Parallel()

	_, attendees, meeting := fixture()
	store := newFakeStore(meeting)
	issuer := &fakeIssuer{}
	svc := newTestService(store, issuer, &fakeNotifier{}, &fakeAuditor{}, &fakeJobs{})

	edit := *meeting
	owner := attendees[1].ID
	_, err := svc.Update(context.Background(), attendees[0], meeting.ID, UpdateInput{
		Meeting: &edit,
		Proposals: []tasks.Proposal{
			{Title: "Compile trend data", AssignedToID: &owner, DueDate: time.Now().Add(48 * time.Hour)},
		},
	})
	if err != nil {
		t.Fatalf("Update with proposals: %v", err)
	}
	if len(issuer.batches) != 1 || len(issuer.batches[0]) != 1 {
		t.Fatalf("issued batches: %+v", issuer.batches)
	}
}

func TestDeleteRules(t *testing.T) {
	t.Parallel()

	organizer, attendees, meeting := fixture()
	store := newFakeStore(meeting)
	svc := newTestService(store, &fakeIssuer{}, &fakeNotifier{}, &fakeAuditor{}, &fakeJobs{})

	if err := svc.Delete(context.Background(), attendees[1], meeting.ID); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("attendee delete: got %v", err)
	}
	if err := svc.Delete(context.Background(), organizer, uuid.New()); err != nil {
		t.Fatalf("absent delete: got %v", err)
	}
	if err := svc.Delete(context.Background(), organizer, meeting.ID); err != nil {
		t.Fatalf("organizer delete: got %v", err)
	}
	if _, err := store.GetByID(context.Background(), meeting.ID); err == nil {
		t.Fatal("meeting still present after delete")
	}
}
