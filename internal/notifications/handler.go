package notifications

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/swisspharma/opsboard-backend/internal/middleware"
	"github.com/swisspharma/opsboard-backend/pkg/response"
)

// Handler handles notification feed HTTP endpoints. Every endpoint is
// scoped to the acting user's own feed.
type Handler struct {
	repo *Repository
}

// NewHandler creates a notification handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /notifications.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListByRecipient(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list notifications")
		return
	}
	response.OK(c, list)
}

// MarkAllRead handles POST /notifications/read. Marks the whole feed
// read in place; entries are never removed by this operation.
func (h *Handler) MarkAllRead(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if err := h.repo.MarkAllRead(c.Request.Context(), userID); err != nil {
		response.Internal(c, "failed to mark notifications read")
		return
	}
	response.NoContent(c)
}

// Dismiss handles DELETE /notifications/:id. Removes one entry
// regardless of read state; an absent id is a silent no-op.
func (h *Handler) Dismiss(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid notification id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if err := h.repo.Delete(c.Request.Context(), id, userID); err != nil {
		response.Internal(c, "failed to dismiss notification")
		return
	}
	response.NoContent(c)
}
