package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/swisspharma/opsboard-backend/internal/models"
)

// Recorder is the append-only sink for state-changing actions. A failed
// insert is logged but never fails the calling operation: the state
// change has already been decided by the time it is recorded.
type Recorder struct {
	repo   *Repository
	logger *zap.Logger
}

// NewRecorder creates an audit recorder.
func NewRecorder(repo *Repository, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{repo: repo, logger: logger}
}

// Record appends one entry attributed to the acting user.
func (rec *Recorder) Record(ctx context.Context, actor *models.User, action models.ActionType, details string) {
	if actor == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     actor.ID,
		Action:     action,
		Details:    details,
		Department: actor.Department,
	}
	if err := rec.repo.Insert(ctx, entry); err != nil {
		rec.logger.Error("audit insert failed",
			zap.Error(err),
			zap.String("action", string(action)),
			zap.String("user_id", actor.ID.String()),
		)
	}
}
