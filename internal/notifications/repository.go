package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swisspharma/opsboard-backend/internal/models"
)

// Repository handles notification persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a notification repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one unread notification to the recipient's feed.
func (r *Repository) Insert(ctx context.Context, n *models.AppNotification) error {
	const q = `INSERT INTO notifications (recipient_id, type, title, message, link_to, reference_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, read, created_at`
	return r.pool.QueryRow(ctx, q, n.RecipientID, string(n.Type), n.Title, n.Message, string(n.LinkTo), n.ReferenceID).
		Scan(&n.ID, &n.Read, &n.CreatedAt)
}

// ListByRecipient returns the recipient's feed newest-first.
func (r *Repository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]models.AppNotification, error) {
	const q = `SELECT id, recipient_id, type, title, message, read, link_to, reference_id, created_at
		FROM notifications WHERE recipient_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.AppNotification
	for rows.Next() {
		var n models.AppNotification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Title, &n.Message, &n.Read, &n.LinkTo, &n.ReferenceID, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkAllRead sets every notification for one recipient to read in place.
func (r *Repository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND read = FALSE`, recipientID)
	return err
}

// Delete removes exactly one notification by id, scoped to its recipient.
// Deleting an absent id is a no-op.
func (r *Repository) Delete(ctx context.Context, id, recipientID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	return err
}
