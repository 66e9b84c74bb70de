package attachments

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/swisspharma/opsboard-backend/internal/middleware"
	"github.com/swisspharma/opsboard-backend/internal/models"
	"github.com/swisspharma/opsboard-backend/pkg/response"
	"github.com/swisspharma/opsboard-backend/pkg/storage"
)

// Handler handles attachment upload and download endpoints. Attachment
// metadata lives on the owning task or meeting; this layer only moves
// bytes and mints pre-signed URLs.
type Handler struct {
	store *storage.S3
}

// NewHandler creates an attachment handler.
func NewHandler(store *storage.S3) *Handler {
	return &Handler{store: store}
}

// Upload handles POST /attachments with a multipart file. The returned
// Attachment value is what the client embeds in the task or meeting it
// is editing.
func (h *Handler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > storage.MaxAttachmentSize {
		response.BadRequest(c, "file exceeds the 20MB limit")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !storage.ValidateAttachmentType(contentType) {
		response.BadRequest(c, "unsupported file type: "+contentType)
		return
	}

	user := middleware.CurrentUser(c)
	attachmentID := uuid.New().String()
	key := storage.AttachmentKey(user.ID.String(), attachmentID, header.Filename)

	if err := h.store.Upload(c.Request.Context(), key, contentType, file, header.Size); err != nil {
		response.Internal(c, "failed to store attachment")
		return
	}

	response.Created(c, models.Attachment{
		Name:        header.Filename,
		Key:         key,
		ContentType: contentType,
		Size:        header.Size,
	})
}

// DownloadURL handles GET /attachments/download-url?key=... and returns
// a short-lived pre-signed URL.
func (h *Handler) DownloadURL(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		response.BadRequest(c, "key is required")
		return
	}
	url, err := h.store.PresignDownload(c.Request.Context(), key)
	if err != nil {
		response.Internal(c, "failed to presign download")
		return
	}
	response.OK(c, gin.H{
		"url":        url,
		"expires_in": int(h.store.PresignExpire().Seconds()),
	})
}
