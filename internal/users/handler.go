package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/swisspharma/opsboard-backend/internal/ai"
	"github.com/swisspharma/opsboard-backend/internal/authz"
	"github.com/swisspharma/opsboard-backend/internal/middleware"
	"github.com/swisspharma/opsboard-backend/internal/models"
	"github.com/swisspharma/opsboard-backend/pkg/response"
	"github.com/swisspharma/opsboard-backend/pkg/utils"
)

// Auditor records state-changing actions.
type Auditor interface {
	Record(ctx context.Context, actor *models.User, action models.ActionType, details string)
}

// TaskCounter supplies task statistics as appraisal evidence.
type TaskCounter interface {
	CountByAssignee(ctx context.Context, userID uuid.UUID) (total, completed int, err error)
}

// MeetingCounter supplies meeting attendance as appraisal evidence.
type MeetingCounter interface {
	CountAttendedBy(ctx context.Context, userID uuid.UUID) (int, error)
}

// ActivityCounter supplies audit trail volume as appraisal evidence.
type ActivityCounter interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// Handler handles personnel, designation and appraisal endpoints.
type Handler struct {
	repo     *Repository
	auditor  Auditor
	ai       *ai.Client
	tasks    TaskCounter
	meetings MeetingCounter
	activity ActivityCounter
}

// NewHandler creates the personnel handler.
func NewHandler(repo *Repository, auditor Auditor, aiClient *ai.Client, tasks TaskCounter, meetings MeetingCounter, activity ActivityCounter) *Handler {
	return &Handler{repo: repo, auditor: auditor, ai: aiClient, tasks: tasks, meetings: meetings, activity: activity}
}

// List handles GET /users.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list personnel")
		return
	}
	response.OK(c, list)
}

// PersonnelRequest is the body for personnel create and update.
type PersonnelRequest struct {
	Email      string            `json:"email" binding:"required,email"`
	Password   string            `json:"password"`
	FullName   string            `json:"full_name" binding:"required"`
	Role       models.Role       `json:"role" binding:"required"`
	Department models.Department `json:"department" binding:"required"`
	Team       models.Team       `json:"team"`
	Region     models.Region     `json:"region"`
	ReportsTo  *uuid.UUID        `json:"reports_to"`
	IsMSD      bool              `json:"is_msd"`
}

func (req *PersonnelRequest) toUser() *models.User {
	u := &models.User{
		Email:      utils.NormalizeEmail(req.Email),
		FullName:   req.FullName,
		Role:       req.Role,
		Department: req.Department,
		Team:       req.Team,
		Region:     req.Region,
		ReportsTo:  req.ReportsTo,
		IsMSD:      req.IsMSD,
	}
	if u.Team == "" {
		u.Team = models.TeamNone
	}
	if u.Region == "" {
		u.Region = models.RegionNone
	}
	return u
}

// Create handles POST /users. When no password is supplied, a temporary
// one is generated; distribution is out of band.
func (h *Handler) Create(c *gin.Context) {
	var req PersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	password := req.Password
	if password == "" {
		var err error
		if password, err = utils.GenerateTempPassword(); err != nil {
			response.Internal(c, "failed to generate credentials")
			return
		}
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	u := req.toUser()
	u.Password = hash
	if err := h.repo.Create(c.Request.Context(), u); err != nil {
		response.Internal(c, "failed to create personnel record")
		return
	}

	actor := middleware.CurrentUser(c)
	h.auditor.Record(c.Request.Context(), actor, models.ActionPersonnelUpdate,
		fmt.Sprintf("Onboarded %s as %s in %s", u.FullName, u.Role, u.Department))
	response.Created(c, u.ToPublic())
}

// Update handles PUT /users/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req PersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "personnel record not found")
		return
	}

	u := req.toUser()
	u.ID = id
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			response.Internal(c, "failed to hash password")
			return
		}
		u.Password = hash
	}
	if err := h.repo.Update(c.Request.Context(), u); err != nil {
		response.Internal(c, "failed to update personnel record")
		return
	}

	actor := middleware.CurrentUser(c)
	h.auditor.Record(c.Request.Context(), actor, models.ActionPersonnelUpdate,
		fmt.Sprintf("Updated personnel record of %s", u.FullName))
	response.OK(c, u.ToPublic())
}

// ListDesignations handles GET /designations.
func (h *Handler) ListDesignations(c *gin.Context) {
	list, err := h.repo.ListDesignations(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list designations")
		return
	}
	response.OK(c, list)
}

// DesignationRequest is the body for POST /designations.
type DesignationRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateDesignation handles POST /designations.
func (h *Handler) CreateDesignation(c *gin.Context) {
	var req DesignationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	actor := middleware.CurrentUser(c)
	d := &models.Designation{Name: strings.TrimSpace(req.Name), CreatedBy: actor.ID}
	if err := h.repo.CreateDesignation(c.Request.Context(), d); err != nil {
		response.Conflict(c, "designation already exists")
		return
	}
	h.auditor.Record(c.Request.Context(), actor, models.ActionDesignationAdded,
		fmt.Sprintf("Added designation %q to the hierarchy", d.Name))
	response.Created(c, d)
}

// AppraisalRequest is the body for POST /users/:id/appraisal.
type AppraisalRequest struct {
	KPIs string `json:"kpis" binding:"required"`
}

// Appraisal handles POST /users/:id/appraisal: gathers the subject's
// activity record and asks the appraisal model for a verdict.
func (h *Handler) Appraisal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req AppraisalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	subject, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "personnel record not found")
			return
		}
		response.Internal(c, "failed to load personnel record")
		return
	}

	actor := middleware.CurrentUser(c)
	if !authz.Can(actor, authz.ActionAppraisalRun, subject) {
		response.Forbidden(c, "insufficient rights to appraise this user")
		return
	}

	ctx := c.Request.Context()
	evidence := ai.AppraisalEvidence{}
	if evidence.TasksAssigned, evidence.TasksCompleted, err = h.tasks.CountByAssignee(ctx, id); err != nil {
		response.Internal(c, "failed to gather task records")
		return
	}
	if evidence.MeetingsAttended, err = h.meetings.CountAttendedBy(ctx, id); err != nil {
		response.Internal(c, "failed to gather meeting records")
		return
	}
	if evidence.AuditEntries, err = h.activity.CountByUser(ctx, id); err != nil {
		response.Internal(c, "failed to gather activity records")
		return
	}

	verdict, err := h.ai.GenerateAppraisal(ctx, subject.FullName, string(subject.Role), req.KPIs, evidence)
	if err != nil {
		response.BadGateway(c, "appraisal service unavailable")
		return
	}
	response.OK(c, gin.H{
		"subject":   subject.ToPublic(),
		"evidence":  evidence,
		"appraisal": verdict,
	})
}
