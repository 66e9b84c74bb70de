package auth

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/swisspharma/opsboard-backend/internal/models"
	"github.com/swisspharma/opsboard-backend/pkg/response"
	"github.com/swisspharma/opsboard-backend/pkg/utils"
)

// Auditor records state-changing actions attributed to a user.
type Auditor interface {
	Record(ctx context.Context, actor *models.User, action models.ActionType, details string)
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo    *Repository
	jwt     *JWTService
	auditor Auditor
	logger  *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, auditor Auditor, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, auditor: auditor, logger: logger}
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), utils.NormalizeEmail(req.Email))
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user)
	if err != nil {
		h.logger.Error("generate token", zap.Error(err))
		response.Internal(c, "failed to generate token")
		return
	}

	h.auditor.Record(c.Request.Context(), user, models.ActionLogin,
		fmt.Sprintf("Authenticated session for %s (%s).", user.FullName, user.Role))

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}
