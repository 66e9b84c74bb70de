package meetings

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/swisspharma/opsboard-backend/internal/middleware"
	"github.com/swisspharma/opsboard-backend/internal/models"
	"github.com/swisspharma/opsboard-backend/internal/tasks"
	"github.com/swisspharma/opsboard-backend/pkg/response"
)

// ProposalRequest is one directive extracted from the minutes during a save.
type ProposalRequest struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	AssignedToID *uuid.UUID          `json:"assigned_to_id"`
	DueDate      time.Time           `json:"due_date"`
	Priority     models.TaskPriority `json:"priority"`
	Recurrence   models.Recurrence   `json:"recurrence"`
}

// MeetingRequest is the body for meeting create and update. Minutes may
// arrive either tagged or as a legacy raw string.
type MeetingRequest struct {
	Title        string              `json:"title" binding:"required"`
	Description  string              `json:"description"`
	StartTime    time.Time           `json:"start_time" binding:"required"`
	EndTime      time.Time           `json:"end_time" binding:"required"`
	Location     string              `json:"location"`
	Department   models.Department   `json:"department"`
	Team         models.Team         `json:"team"`
	Region       models.Region       `json:"region"`
	LeaderID     *uuid.UUID          `json:"leader_id"`
	Attendees    []uuid.UUID         `json:"attendees"`
	Minutes      json.RawMessage     `json:"minutes"`
	Type         models.MeetingType  `json:"type"`
	Recurrence   models.Recurrence   `json:"recurrence"`
	IsCustomRoom bool                `json:"is_custom_room"`
	TravelCities string              `json:"travel_cities"`
	Attachments  []models.Attachment `json:"attachments"`
	Proposals    []ProposalRequest   `json:"proposals"`
}

func (req *MeetingRequest) toMeeting(department models.Department) *models.Meeting {
	m := &models.Meeting{
		Title:        req.Title,
		Description:  req.Description,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Location:     req.Location,
		Department:   req.Department,
		Team:         req.Team,
		Region:       req.Region,
		Attendees:    req.Attendees,
		Minutes:      parseMinutes(req.Minutes),
		Type:         req.Type,
		Recurrence:   req.Recurrence,
		IsCustomRoom: req.IsCustomRoom,
		TravelCities: req.TravelCities,
		Attachments:  req.Attachments,
	}
	if req.LeaderID != nil {
		m.LeaderID = *req.LeaderID
	}
	if m.Department == "" {
		m.Department = department
	}
	if m.Team == "" {
		m.Team = models.TeamNone
	}
	if m.Region == "" {
		m.Region = models.RegionNone
	}
	return m
}

// parseMinutes accepts the tagged form, a legacy raw string, or absence.
func parseMinutes(raw json.RawMessage) *models.Minutes {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var legacy string
	if err := json.Unmarshal(raw, &legacy); err == nil {
		return models.ImportLegacyMinutes(legacy)
	}
	var tagged models.Minutes
	if err := json.Unmarshal(raw, &tagged); err == nil && tagged.Format != "" {
		return &tagged
	}
	return nil
}

func toProposals(reqs []ProposalRequest) []tasks.Proposal {
	out := make([]tasks.Proposal, 0, len(reqs))
	for _, p := range reqs {
		out = append(out, tasks.Proposal{
			Title:        p.Title,
			Description:  p.Description,
			AssignedToID: p.AssignedToID,
			DueDate:      p.DueDate,
			Priority:     p.Priority,
			Recurrence:   p.Recurrence,
		})
	}
	return out
}

// Handler handles meeting HTTP endpoints.
type Handler struct {
	repo    *Repository
	service *Service
}

// NewHandler creates a meeting handler.
func NewHandler(repo *Repository, service *Service) *Handler {
	return &Handler{repo: repo, service: service}
}

// List handles GET /meetings.
func (h *Handler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	list, err := h.repo.ListForUser(c.Request.Context(), user)
	if err != nil {
		response.Internal(c, "failed to list meetings")
		return
	}
	response.OK(c, list)
}

// Get handles GET /meetings/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meeting id")
		return
	}
	m, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "meeting not found")
		return
	}
	response.OK(c, m)
}

// Create handles POST /meetings.
func (h *Handler) Create(c *gin.Context) {
	var req MeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	user := middleware.CurrentUser(c)
	m := req.toMeeting(user.Department)
	if err := h.service.Create(c.Request.Context(), user, m); err != nil {
		if errors.Is(err, ErrValidation) {
			response.BadRequest(c, err.Error())
			return
		}
		response.Internal(c, "failed to create meeting")
		return
	}
	response.Created(c, m)
}

// Update handles PUT /meetings/:id, the minutes save flow.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meeting id")
		return
	}
	var req MeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	updated, err := h.service.Update(c.Request.Context(), user, id, UpdateInput{
		Meeting:   req.toMeeting(user.Department),
		Proposals: toProposals(req.Proposals),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "meeting not found")
		case errors.Is(err, ErrLocked):
			response.Conflict(c, err.Error())
		case errors.Is(err, ErrNotParticipant):
			response.Forbidden(c, err.Error())
		case errors.Is(err, tasks.ErrValidation):
			response.BadRequest(c, err.Error())
		default:
			response.Internal(c, "failed to update meeting")
		}
		return
	}
	response.OK(c, updated)
}

// Finalize handles POST /meetings/:id/finalize.
func (h *Handler) Finalize(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meeting id")
		return
	}
	user := middleware.CurrentUser(c)
	m, err := h.service.Finalize(c.Request.Context(), user, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "meeting not found")
		case errors.Is(err, ErrNotAttendee):
			response.Forbidden(c, err.Error())
		default:
			response.Internal(c, "failed to record sign-off")
		}
		return
	}
	response.OK(c, m)
}

// Delete handles DELETE /meetings/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meeting id")
		return
	}
	user := middleware.CurrentUser(c)
	if err := h.service.Delete(c.Request.Context(), user, id); err != nil {
		switch {
		case errors.Is(err, ErrNotParticipant):
			response.Forbidden(c, "only the organizer may remove a meeting")
		case errors.Is(err, ErrLocked):
			response.Conflict(c, err.Error())
		default:
			response.Internal(c, "failed to delete meeting")
		}
		return
	}
	response.NoContent(c)
}
