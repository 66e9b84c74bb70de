package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/swisspharma/opsboard-backend/internal/models"
	"github.com/swisspharma/opsboard-backend/pkg/queue"
)

type fakeNotifier struct {
	sent []uuid.UUID
}

func (n *fakeNotifier) Notify(_ context.Context, recipientID uuid.UUID, _ models.NotificationType, _, _ string, _ models.LinkTarget, _ *uuid.UUID) {
	n.sent = append(n.sent, recipientID)
}

type fakeMeetings struct {
	meeting *models.Meeting
	recaps  map[uuid.UUID]string
}

func (m *fakeMeetings) GetByID(_ context.Context, id uuid.UUID) (*models.Meeting, error) {
	if m.meeting == nil || m.meeting.ID != id {
		return nil, errors.New("no rows")
	}
	cp := *m.meeting
	return &cp, nil
}

func (m *fakeMeetings) SetRecap(_ context.Context, meetingID uuid.UUID, recap string) error {
	if m.recaps == nil {
		m.recaps = make(map[uuid.UUID]string)
	}
	m.recaps[meetingID] = recap
	return nil
}

type fakeSummarizer struct {
	calls int
	fail  bool
}

func (s *fakeSummarizer) SummarizeMinutes(_ context.Context, raw string) (string, error) {
	s.calls++
	if s.fail {
		return "", errors.New("backend down")
	}
	return "RECAP: " + raw, nil
}

func job(t *testing.T, typ queue.JobType, payload interface{}) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &queue.Job{ID: uuid.New().String(), Type: typ, Payload: raw, CreatedAt: time.Now()}
}

func TestProcessDueReminder(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{}
	p := NewProcessor(nil, notifier, &fakeMeetings{}, &fakeSummarizer{}, nil)

	assignee := uuid.New()
	err := p.Process(context.Background(), job(t, queue.JobTypeDueReminder, queue.DueReminderPayload{
		TaskID:       uuid.New(),
		AssignedToID: assignee,
		Title:        "Stability batch review",
		DueDate:      time.Now().Add(12 * time.Hour),
		Priority:     "Q1",
	}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != assignee {
		t.Fatalf("reminders sent: %+v", notifier.sent)
	}
}

func TestProcessMinutesRecap(t *testing.T) {
	t.Parallel()

	meeting := &models.Meeting{
		ID:      uuid.New(),
		Title:   "Q3 review",
		Minutes: models.TextMinutes("Release criteria discussed."),
	}
	meetings := &fakeMeetings{meeting: meeting}
	summ := &fakeSummarizer{}
	p := NewProcessor(nil, &fakeNotifier{}, meetings, summ, nil)

	err := p.Process(context.Background(), job(t, queue.JobTypeMinutesRecap, queue.MinutesRecapPayload{MeetingID: meeting.ID}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := meetings.recaps[meeting.ID]; got != "RECAP: Release criteria discussed." {
		t.Fatalf("recap = %q", got)
	}
}

func TestProcessMinutesRecapIdempotent(t *testing.T) {
	t.Parallel()

	meeting := &models.Meeting{
		ID:      uuid.New(),
		Minutes: models.TextMinutes("notes"),
		Recap:   "already generated",
	}
	summ := &fakeSummarizer{}
	p := NewProcessor(nil, &fakeNotifier{}, &fakeMeetings{meeting: meeting}, summ, nil)

	if err := p.Process(context.Background(), job(t, queue.JobTypeMinutesRecap, queue.MinutesRecapPayload{MeetingID: meeting.ID})); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if summ.calls != 0 {
		t.Fatalf("summarizer called %d times for an existing recap", summ.calls)
	}
}

func TestProcessMinutesRecapPropagatesBackendFailure(t *testing.T) {
	t.Parallel()

	meeting := &models.Meeting{ID: uuid.New(), Minutes: models.TextMinutes("notes")}
	p := NewProcessor(nil, &fakeNotifier{}, &fakeMeetings{meeting: meeting}, &fakeSummarizer{fail: true}, nil)

	err := p.Process(context.Background(), job(t, queue.JobTypeMinutesRecap, queue.MinutesRecapPayload{MeetingID: meeting.ID}))
	if err == nil {
		t.Fatal("expected error so the job is retried")
	}
}

func TestProcessUnknownJobType(t *testing.T) {
	t.Parallel()

	p := NewProcessor(nil, &fakeNotifier{}, &fakeMeetings{}, &fakeSummarizer{}, nil)
	if err := p.Process(context.Background(), job(t, queue.JobType("mystery"), struct{}{})); err == nil {
		t.Fatal("expected error for unknown job type")
	}
}
