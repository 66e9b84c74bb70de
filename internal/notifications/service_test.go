package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/swisspharma/opsboard-backend/internal/models"
)

type fakeStore struct {
	inserted []*models.AppNotification
	fail     bool
}

func (s *fakeStore) Insert(_ context.Context, n *models.AppNotification) error {
	if s.fail {
		return errors.New("insert failed")
	}
	n.ID = uuid.New()
	s.inserted = append(s.inserted, n)
	return nil
}

type fakeFeed struct {
	published []uuid.UUID
}

func (f *fakeFeed) PublishToUser(userID uuid.UUID, _ string, _ interface{}) {
	f.published = append(f.published, userID)
}

func TestNotifyPersistsAndPushes(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	feed := &fakeFeed{}
	rt := NewRouter(store, feed, nil)

	recipient := uuid.New()
	ref := uuid.New()
	rt.Notify(context.Background(), recipient, models.NotifTask, "Directive Received", "New Q1 task.", models.LinkTasks, &ref)

	if len(store.inserted) != 1 {
		t.Fatalf("inserted = %d, want 1", len(store.inserted))
	}
	n := store.inserted[0]
	if n.RecipientID != recipient || n.Read {
		t.Fatalf("notification = %+v", n)
	}
	if n.LinkTo != models.LinkTasks || n.ReferenceID == nil || *n.ReferenceID != ref {
		t.Fatalf("deep link = %+v", n)
	}
	if len(feed.published) != 1 || feed.published[0] != recipient {
		t.Fatalf("feed pushes = %+v", feed.published)
	}
}

func TestNotifySkipsPushWhenInsertFails(t *testing.T) {
	t.Parallel()

	store := &fakeStore{fail: true}
	feed := &fakeFeed{}
	rt := NewRouter(store, feed, nil)

	rt.Notify(context.Background(), uuid.New(), models.NotifSystem, "x", "y", models.LinkLogs, nil)
	if len(feed.published) != 0 {
		t.Fatalf("pushed despite failed insert: %+v", feed.published)
	}
}

func TestNotifyWithoutFeed(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	rt := NewRouter(store, nil, nil)
	rt.Notify(context.Background(), uuid.New(), models.NotifMeeting, "Meeting Invitation", "z", models.LinkCalendar, nil)
	if len(store.inserted) != 1 {
		t.Fatalf("inserted = %d, want 1", len(store.inserted))
	}
}
