package tasks

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swisspharma/opsboard-backend/internal/models"
)

const taskColumns = `id, title, description, assigned_to_id, assigned_by_id, meeting_id, due_date,
	status, priority, recurrence, rejection_reason, completion_message,
	attachments, completion_attachments, created_at, updated_at`

// Repository handles task persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a task repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	var attachments, completionAttachments []byte
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.AssignedToID, &t.AssignedByID, &t.MeetingID,
		&t.DueDate, &t.Status, &t.Priority, &t.Recurrence, &t.RejectionReason, &t.CompletionMessage,
		&attachments, &completionAttachments, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(attachments, &t.Attachments)
	_ = json.Unmarshal(completionAttachments, &t.CompletionAttachments)
	return &t, nil
}

// Create inserts a new task.
func (r *Repository) Create(ctx context.Context, t *models.Task) error {
	attachments, _ := json.Marshal(orEmpty(t.Attachments))
	const q = `INSERT INTO tasks (title, description, assigned_to_id, assigned_by_id, meeting_id, due_date, status, priority, recurrence, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.Title, t.Description, t.AssignedToID, t.AssignedByID, t.MeetingID,
		t.DueDate, string(t.Status), string(t.Priority), string(t.Recurrence), attachments).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns a task by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
}

// UpdateLifecycle persists the mutable lifecycle fields after a transition.
func (r *Repository) UpdateLifecycle(ctx context.Context, t *models.Task) error {
	completionAttachments, _ := json.Marshal(orEmpty(t.CompletionAttachments))
	const q = `UPDATE tasks SET status = $1, rejection_reason = $2, completion_message = $3,
		completion_attachments = $4, updated_at = NOW() WHERE id = $5`
	_, err := r.pool.Exec(ctx, q, string(t.Status), t.RejectionReason, t.CompletionMessage, completionAttachments, t.ID)
	return err
}

// Delete removes a task by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

// ListVisible returns the tasks the user may see: executives see every
// task, department heads see their department's, everyone else sees
// tasks they are assigned to or issued.
func (r *Repository) ListVisible(ctx context.Context, user *models.User) ([]models.Task, error) {
	base := `SELECT ` + qualify(taskColumns, "t") + ` FROM tasks t`
	var q string
	var args []interface{}
	switch {
	case user.Role.IsExecutive():
		q = base + ` ORDER BY t.created_at DESC`
	case user.Role == models.RoleHOD:
		q = base + ` JOIN users u ON u.id = t.assigned_to_id WHERE u.department = $1 ORDER BY t.created_at DESC`
		args = append(args, string(user.Department))
	default:
		q = base + ` WHERE t.assigned_to_id = $1 OR t.assigned_by_id = $1 ORDER BY t.created_at DESC`
		args = append(args, user.ID)
	}
	return r.list(ctx, q, args...)
}

// ListDueWithin returns active tasks whose due date falls inside the
// window starting now. Completed and rejected tasks are excluded.
func (r *Repository) ListDueWithin(ctx context.Context, windowHours int) ([]models.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks
		WHERE due_date BETWEEN NOW() AND NOW() + make_interval(hours => $1)
		AND status NOT IN ('Completed', 'Rejected')
		ORDER BY due_date`
	return r.list(ctx, q, windowHours)
}

// CountByAssignee returns total and completed task counts for a user,
// used as appraisal evidence.
func (r *Repository) CountByAssignee(ctx context.Context, userID uuid.UUID) (total, completed int, err error) {
	const q = `SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'Completed') FROM tasks WHERE assigned_to_id = $1`
	err = r.pool.QueryRow(ctx, q, userID).Scan(&total, &completed)
	return total, completed, err
}

func (r *Repository) list(ctx context.Context, q string, args ...interface{}) ([]models.Task, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

// qualify prefixes each column with a table alias for joined queries.
func qualify(cols, alias string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func orEmpty(a []models.Attachment) []models.Attachment {
	if a == nil {
		return []models.Attachment{}
	}
	return a
}
