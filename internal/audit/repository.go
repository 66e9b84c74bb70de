package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swisspharma/opsboard-backend/internal/models"
)

// Repository handles audit log persistence. The table is append-only;
// no update or delete statements exist.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an audit repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one audit entry. The sequence number is assigned by the
// database, so insertion order is the causal order.
func (r *Repository) Insert(ctx context.Context, entry *models.AuditLog) error {
	const q = `INSERT INTO audit_logs (user_id, action, details, department)
		VALUES ($1, $2, $3, $4)
		RETURNING id, seq, ts`
	return r.pool.QueryRow(ctx, q, entry.UserID, string(entry.Action), entry.Details, string(entry.Department)).
		Scan(&entry.ID, &entry.Seq, &entry.Timestamp)
}

// List returns entries newest-first, optionally limited.
func (r *Repository) List(ctx context.Context, limit int) ([]models.AuditLog, error) {
	q := `SELECT id, seq, ts, user_id, action, details, department FROM audit_logs ORDER BY seq DESC`
	var rowsArgs []interface{}
	if limit > 0 {
		q += ` LIMIT $1`
		rowsArgs = append(rowsArgs, limit)
	}
	rows, err := r.pool.Query(ctx, q, rowsArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.AuditLog
	for rows.Next() {
		var e models.AuditLog
		if err := rows.Scan(&e.ID, &e.Seq, &e.Timestamp, &e.UserID, &e.Action, &e.Details, &e.Department); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// CountByUser returns the number of entries attributed to a user, used
// as an activity signal for appraisals.
func (r *Repository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}
