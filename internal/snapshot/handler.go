package snapshot

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/swisspharma/opsboard-backend/internal/middleware"
	"github.com/swisspharma/opsboard-backend/internal/models"
	"github.com/swisspharma/opsboard-backend/pkg/response"
)

// Auditor records state-changing actions.
type Auditor interface {
	Record(ctx context.Context, actor *models.User, action models.ActionType, details string)
}

// Handler handles full-store export and import.
type Handler struct {
	store   *Store
	auditor Auditor
}

// NewHandler creates a snapshot handler.
func NewHandler(store *Store, auditor Auditor) *Handler {
	return &Handler{store: store, auditor: auditor}
}

// Export handles GET /snapshot.
func (h *Handler) Export(c *gin.Context) {
	doc, err := h.store.Export(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to export store")
		return
	}
	response.OK(c, doc)
}

// Import handles POST /snapshot. The whole store is replaced; the
// caller's own account must be present in the document or they lock
// themselves out.
func (h *Handler) Import(c *gin.Context) {
	var doc Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		response.BadRequest(c, "invalid snapshot document: "+err.Error())
		return
	}
	if len(doc.Users) == 0 {
		response.BadRequest(c, "snapshot document has no users")
		return
	}
	actor := middleware.CurrentUser(c)
	if err := h.store.Import(c.Request.Context(), &doc); err != nil {
		response.Internal(c, "failed to import store")
		return
	}
	h.auditor.Record(c.Request.Context(), actor, models.ActionPersonnelUpdate,
		"Restored the entity store from an uploaded snapshot")
	response.OK(c, gin.H{
		"users":    len(doc.Users),
		"meetings": len(doc.Meetings),
		"tasks":    len(doc.Tasks),
		"audit":    len(doc.AuditLogs),
		"restored": true,
	})
}
