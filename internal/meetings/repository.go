package meetings

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swisspharma/opsboard-backend/internal/models"
)

const meetingColumns = `id, title, description, start_time, end_time, location, department, team, region,
	organizer_id, leader_id, rejected_by, minutes, recap, type, recurrence,
	is_custom_room, travel_cities, attachments, created_at, updated_at`

// Repository handles meeting persistence, including the attendee roster
// and the per-user sign-off table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a meeting repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanMeeting(row pgx.Row) (*models.Meeting, error) {
	var m models.Meeting
	var rejectedBy, minutes, attachments []byte
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.StartTime, &m.EndTime, &m.Location,
		&m.Department, &m.Team, &m.Region, &m.OrganizerID, &m.LeaderID,
		&rejectedBy, &minutes, &m.Recap, &m.Type, &m.Recurrence,
		&m.IsCustomRoom, &m.TravelCities, &attachments, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(rejectedBy, &m.RejectedBy)
	_ = json.Unmarshal(attachments, &m.Attachments)
	if len(minutes) > 0 {
		var parsed models.Minutes
		if err := json.Unmarshal(minutes, &parsed); err == nil {
			m.Minutes = &parsed
		}
	}
	return &m, nil
}

// Create inserts a meeting and its attendee roster in one transaction.
func (r *Repository) Create(ctx context.Context, m *models.Meeting) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	minutes, err := marshalMinutes(m.Minutes)
	if err != nil {
		return err
	}
	attachments, _ := json.Marshal(orEmpty(m.Attachments))

	const q = `INSERT INTO meetings (title, description, start_time, end_time, location, department, team, region,
			organizer_id, leader_id, minutes, recap, type, recurrence, is_custom_room, travel_cities, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(ctx, q, m.Title, m.Description, m.StartTime, m.EndTime, m.Location,
		string(m.Department), string(m.Team), string(m.Region), m.OrganizerID, m.LeaderID,
		minutes, m.Recap, string(m.Type), string(m.Recurrence), m.IsCustomRoom, m.TravelCities, attachments).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return err
	}

	for _, userID := range m.Attendees {
		if _, err := tx.Exec(ctx,
			`INSERT INTO meeting_attendees (meeting_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			m.ID, userID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// GetByID returns a meeting with its attendee and sign-off lists loaded.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error) {
	m, err := scanMeeting(r.pool.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadRosters(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Update persists the editable fields and replaces the attendee roster.
// Sign-offs are never touched here.
func (r *Repository) Update(ctx context.Context, m *models.Meeting) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	minutes, err := marshalMinutes(m.Minutes)
	if err != nil {
		return err
	}
	attachments, _ := json.Marshal(orEmpty(m.Attachments))

	const q = `UPDATE meetings SET title = $1, description = $2, start_time = $3, end_time = $4, location = $5,
			department = $6, team = $7, region = $8, leader_id = $9, minutes = $10, recap = $11,
			type = $12, recurrence = $13, is_custom_room = $14, travel_cities = $15, attachments = $16,
			updated_at = NOW()
		WHERE id = $17`
	_, err = tx.Exec(ctx, q, m.Title, m.Description, m.StartTime, m.EndTime, m.Location,
		string(m.Department), string(m.Team), string(m.Region), m.LeaderID, minutes, m.Recap,
		string(m.Type), string(m.Recurrence), m.IsCustomRoom, m.TravelCities, attachments, m.ID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM meeting_attendees WHERE meeting_id = $1`, m.ID); err != nil {
		return err
	}
	for _, userID := range m.Attendees {
		if _, err := tx.Exec(ctx,
			`INSERT INTO meeting_attendees (meeting_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			m.ID, userID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// AddSignOff records a user's sign-off. Signing twice is a no-op and
// reports added=false.
func (r *Repository) AddSignOff(ctx context.Context, meetingID, userID uuid.UUID) (added bool, err error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO meeting_finalizers (meeting_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		meetingID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetRecap stores the generated minutes recap.
func (r *Repository) SetRecap(ctx context.Context, meetingID uuid.UUID, recap string) error {
	_, err := r.pool.Exec(ctx, `UPDATE meetings SET recap = $1, updated_at = NOW() WHERE id = $2`, recap, meetingID)
	return err
}

// Delete removes a meeting. Roster and sign-off rows cascade; tasks
// issued from the meeting survive with their provenance link cleared.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	return err
}

// ListForUser returns meetings visible to the user: executives see all,
// everyone else sees meetings they organize, lead, or attend.
func (r *Repository) ListForUser(ctx context.Context, user *models.User) ([]models.Meeting, error) {
	var q string
	var args []interface{}
	if user.Role.IsExecutive() {
		q = `SELECT ` + meetingColumns + ` FROM meetings ORDER BY start_time DESC`
	} else {
		q = `SELECT ` + meetingColumns + ` FROM meetings m0 WHERE m0.organizer_id = $1 OR m0.leader_id = $1
			OR EXISTS (SELECT 1 FROM meeting_attendees a WHERE a.meeting_id = m0.id AND a.user_id = $1)
			ORDER BY m0.start_time DESC`
		args = append(args, user.ID)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range list {
		if err := r.loadRosters(ctx, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// CountAttendedBy returns how many meetings the user was on the roster
// for, used as appraisal evidence.
func (r *Repository) CountAttendedBy(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM meeting_attendees WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *Repository) loadRosters(ctx context.Context, m *models.Meeting) error {
	attendees, err := r.listUserIDs(ctx,
		`SELECT user_id FROM meeting_attendees WHERE meeting_id = $1`, m.ID)
	if err != nil {
		return err
	}
	finalizers, err := r.listUserIDs(ctx,
		`SELECT user_id FROM meeting_finalizers WHERE meeting_id = $1 ORDER BY signed_at`, m.ID)
	if err != nil {
		return err
	}
	m.Attendees = attendees
	m.FinalizedBy = finalizers
	return nil
}

func (r *Repository) listUserIDs(ctx context.Context, q string, meetingID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, q, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func marshalMinutes(m *models.Minutes) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func orEmpty(a []models.Attachment) []models.Attachment {
	if a == nil {
		return []models.Attachment{}
	}
	return a
}
