package notifications

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swisspharma/opsboard-backend/internal/models"
)

// FeedPublisher pushes a new notification to the recipient's live feed
// (WebSocket). Delivery is best effort.
type FeedPublisher interface {
	PublishToUser(userID uuid.UUID, event string, payload interface{})
}

// Store is the persistence the router needs.
type Store interface {
	Insert(ctx context.Context, n *models.AppNotification) error
}

// Router is the stateless fan-out for system events: it appends one
// unread notification to the recipient's feed and pushes it live when a
// publisher is wired. A failed insert is logged, not propagated; the
// triggering state change has already applied.
type Router struct {
	store  Store
	feed   FeedPublisher
	logger *zap.Logger
}

// NewRouter creates a notification router.
func NewRouter(store Store, feed FeedPublisher, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{store: store, feed: feed, logger: logger}
}

// Notify appends one unread notification to the recipient's feed.
func (rt *Router) Notify(ctx context.Context, recipientID uuid.UUID, typ models.NotificationType, title, message string, linkTo models.LinkTarget, referenceID *uuid.UUID) {
	n := &models.AppNotification{
		RecipientID: recipientID,
		Type:        typ,
		Title:       title,
		Message:     message,
		LinkTo:      linkTo,
		ReferenceID: referenceID,
	}
	if err := rt.store.Insert(ctx, n); err != nil {
		rt.logger.Error("notification insert failed",
			zap.Error(err),
			zap.String("recipient_id", recipientID.String()),
			zap.String("title", title),
		)
		return
	}
	if rt.feed != nil {
		rt.feed.PublishToUser(recipientID, "notification", n)
	}
}
