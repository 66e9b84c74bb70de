package ai

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/swisspharma/opsboard-backend/internal/models"
	"github.com/swisspharma/opsboard-backend/pkg/response"
)

// maxAudioBytes caps uploaded recordings at 25 MB.
const maxAudioBytes = 25 << 20

// Directory lists personnel, used to resolve @mention owners to ids.
type Directory interface {
	List(ctx context.Context) ([]models.UserPublic, error)
}

// Handler exposes the AI assistance endpoints.
type Handler struct {
	client *Client
	users  Directory
}

// NewHandler creates the AI handler.
func NewHandler(client *Client, users Directory) *Handler {
	return &Handler{client: client, users: users}
}

// SummarizeRequest is the body for POST /ai/summarize.
type SummarizeRequest struct {
	Notes string `json:"notes" binding:"required"`
}

// Summarize handles POST /ai/summarize.
func (h *Handler) Summarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	text, err := h.client.SummarizeMinutes(c.Request.Context(), req.Notes)
	if err != nil {
		response.BadGateway(c, "summarization service unavailable")
		return
	}
	response.OK(c, gin.H{"minutes": text})
}

// ExtractRequest is the body for POST /ai/extract-tasks.
type ExtractRequest struct {
	Minutes string `json:"minutes" binding:"required"`
}

// ResolvedTask is one extracted directive with its @mention resolved
// against the personnel directory. AssignedToID is nil when no user
// matched; such proposals are dropped at issuance.
type ResolvedTask struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	TaggedName   string     `json:"taggedName,omitempty"`
	AssignedToID *uuid.UUID `json:"assigned_to_id,omitempty"`
	Priority     string     `json:"priority"`
}

// ExtractTasks handles POST /ai/extract-tasks.
func (h *Handler) ExtractTasks(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	extracted, err := h.client.ExtractTasks(c.Request.Context(), req.Minutes)
	if err != nil {
		response.BadGateway(c, "task extraction service unavailable")
		return
	}

	users, err := h.users.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load personnel directory")
		return
	}

	resolved := make([]ResolvedTask, 0, len(extracted))
	for _, t := range extracted {
		r := ResolvedTask{
			Title:       t.Title,
			Description: t.Description,
			TaggedName:  t.TaggedName,
			Priority:    t.Priority,
		}
		if id := matchTaggedName(users, t.TaggedName); id != uuid.Nil {
			r.AssignedToID = &id
		}
		resolved = append(resolved, r)
	}
	response.OK(c, resolved)
}

// matchTaggedName finds the user whose full name contains the mention,
// case-insensitively. First name alone is enough when unambiguous in
// practice; the first match wins.
func matchTaggedName(users []models.UserPublic, tagged string) uuid.UUID {
	tagged = strings.ToLower(strings.TrimSpace(tagged))
	if tagged == "" {
		return uuid.Nil
	}
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.FullName), tagged) {
			return u.ID
		}
	}
	return uuid.Nil
}

// Transcribe handles POST /ai/transcribe with a multipart audio file.
func (h *Handler) Transcribe(c *gin.Context) {
	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		response.BadRequest(c, "audio file is required")
		return
	}
	defer file.Close()

	if header.Size > maxAudioBytes {
		response.BadRequest(c, "audio file exceeds the 25MB limit")
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
	if err != nil || len(data) > maxAudioBytes {
		response.BadRequest(c, "failed to read audio file")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	notes, err := h.client.TranscribeAudio(c.Request.Context(), data, mimeType)
	if err != nil {
		if errors.Is(err, ErrExternalService) {
			response.BadGateway(c, "transcription service unavailable")
			return
		}
		response.Internal(c, "failed to transcribe audio")
		return
	}
	response.OK(c, gin.H{"notes": notes})
}
