package tasks

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/swisspharma/opsboard-backend/internal/middleware"
	"github.com/swisspharma/opsboard-backend/internal/models"
	"github.com/swisspharma/opsboard-backend/pkg/response"
)

// CreateRequest is the body for POST /tasks (standalone directive).
type CreateRequest struct {
	Title        string              `json:"title" binding:"required"`
	Description  string              `json:"description"`
	AssignedToID string              `json:"assigned_to_id" binding:"required,uuid"`
	DueDate      string              `json:"due_date" binding:"required"`
	Priority     models.TaskPriority `json:"priority"`
	Recurrence   models.Recurrence   `json:"recurrence"`
	Attachments  []models.Attachment `json:"attachments"`
}

// TransitionRequest is the body for POST /tasks/:id/transition.
type TransitionRequest struct {
	Status                models.TaskStatus   `json:"status" binding:"required"`
	Reason                string              `json:"reason"`
	CompletionMessage     string              `json:"completion_message"`
	CompletionAttachments []models.Attachment `json:"completion_attachments"`
}

// Handler handles task HTTP endpoints.
type Handler struct {
	repo    *Repository
	service *Service
}

// NewHandler creates a task handler.
func NewHandler(repo *Repository, service *Service) *Handler {
	return &Handler{repo: repo, service: service}
}

// List handles GET /tasks, scoped by the actor's visibility.
func (h *Handler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	list, err := h.repo.ListVisible(c.Request.Context(), user)
	if err != nil {
		response.Internal(c, "failed to list tasks")
		return
	}
	response.OK(c, list)
}

// Create handles POST /tasks: the standalone directive flow. Identical
// to meeting-born issuance minus the meeting link.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	assigneeID, err := uuid.Parse(req.AssignedToID)
	if err != nil {
		response.BadRequest(c, "invalid assigned_to_id")
		return
	}
	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		response.BadRequest(c, "invalid due_date")
		return
	}

	user := middleware.CurrentUser(c)
	created, err := h.service.IssueBatch(c.Request.Context(), user, nil, []Proposal{{
		Title:        req.Title,
		Description:  req.Description,
		AssignedToID: &assigneeID,
		DueDate:      dueDate,
		Priority:     req.Priority,
		Recurrence:   req.Recurrence,
		Attachments:  req.Attachments,
	}})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.BadRequest(c, err.Error())
			return
		}
		response.Internal(c, "failed to create task")
		return
	}
	response.Created(c, created[0])
}

// Transition handles POST /tasks/:id/transition.
func (h *Handler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	task, err := h.service.Transition(c.Request.Context(), user, id, req.Status, TransitionInput{
		Reason:                req.Reason,
		CompletionMessage:     req.CompletionMessage,
		CompletionAttachments: req.CompletionAttachments,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "task not found")
		case errors.Is(err, ErrNotAssignee):
			response.Forbidden(c, err.Error())
		case errors.Is(err, ErrReasonRequired):
			response.BadRequest(c, err.Error())
		case errors.Is(err, ErrInvalidTransition):
			response.Conflict(c, err.Error())
		default:
			response.Internal(c, "failed to update task")
		}
		return
	}
	response.OK(c, task)
}

// Delete handles DELETE /tasks/:id. Absent ids succeed (idempotent).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}
	user := middleware.CurrentUser(c)
	if err := h.service.Delete(c.Request.Context(), user, id); err != nil {
		switch {
		case errors.Is(err, ErrNotAuthorized):
			response.Forbidden(c, "insufficient rights to remove tasks")
		case errors.Is(err, ErrNotDeletable):
			response.Conflict(c, err.Error())
		default:
			response.Internal(c, "failed to delete task")
		}
		return
	}
	response.NoContent(c)
}
