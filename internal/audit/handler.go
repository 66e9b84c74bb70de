package audit

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/swisspharma/opsboard-backend/pkg/response"
)

// Handler handles audit trail HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an audit handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /audit. Access is restricted to the audit.view
// capability by middleware. Query ?limit=N caps the result.
func (h *Handler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}
	list, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		response.Internal(c, "failed to list audit entries")
		return
	}
	response.OK(c, list)
}
