package snapshot

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swisspharma/opsboard-backend/internal/models"
)

// Document is the full entity store as one portable JSON value. Export
// then import of the same document reproduces the same state, audit
// sequence included.
type Document struct {
	ExportedAt    time.Time                `json:"exported_at"`
	Users         []snapshotUser           `json:"users"`
	Designations  []models.Designation     `json:"designations"`
	Meetings      []models.Meeting         `json:"meetings"`
	Tasks         []models.Task            `json:"tasks"`
	AuditLogs     []models.AuditLog        `json:"audit_logs"`
	Notifications []models.AppNotification `json:"notifications"`
}

// snapshotUser carries the password hash that UserPublic strips, so a
// restored store keeps working credentials.
type snapshotUser struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

// Store reads and writes the whole entity store.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a snapshot store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Export reads every entity into one document.
func (s *Store) Export(ctx context.Context) (*Document, error) {
	doc := &Document{ExportedAt: time.Now().UTC()}

	rows, err := s.pool.Query(ctx, `SELECT id, email, password_hash, full_name, role, department, team, region,
		reports_to, is_msd, created_at, updated_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var u snapshotUser
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.Department,
			&u.Team, &u.Region, &u.ReportsTo, &u.IsMSD, &u.CreatedAt, &u.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		doc.Users = append(doc.Users, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx, `SELECT id, name, created_by, created_at FROM designations ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var d models.Designation
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedBy, &d.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		doc.Designations = append(doc.Designations, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if doc.Meetings, err = s.exportMeetings(ctx); err != nil {
		return nil, err
	}
	if doc.Tasks, err = s.exportTasks(ctx); err != nil {
		return nil, err
	}
	if doc.AuditLogs, err = s.exportAuditLogs(ctx); err != nil {
		return nil, err
	}
	if doc.Notifications, err = s.exportNotifications(ctx); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) exportMeetings(ctx context.Context) ([]models.Meeting, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, title, description, start_time, end_time, location, department, team, region,
		organizer_id, leader_id, rejected_by, minutes, recap, type, recurrence, is_custom_room, travel_cities,
		attachments, created_at, updated_at FROM meetings ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Meeting
	for rows.Next() {
		var m models.Meeting
		var rejectedBy, minutes, attachments []byte
		err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.StartTime, &m.EndTime, &m.Location,
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
			if json.Unmarshal(minutes, &parsed) == nil {
				m.Minutes = &parsed
			}
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range list {
		if list[i].Attendees, err = s.listIDs(ctx,
			`SELECT user_id FROM meeting_attendees WHERE meeting_id = $1`, list[i].ID); err != nil {
			return nil, err
		}
		if list[i].FinalizedBy, err = s.listIDs(ctx,
			`SELECT user_id FROM meeting_finalizers WHERE meeting_id = $1 ORDER BY signed_at`, list[i].ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (s *Store) exportTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, title, description, assigned_to_id, assigned_by_id, meeting_id, due_date,
		status, priority, recurrence, rejection_reason, completion_message, attachments, completion_attachments,
		created_at, updated_at FROM tasks ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Task
	for rows.Next() {
		var t models.Task
		var attachments, completionAttachments []byte
		err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.AssignedToID, &t.AssignedByID, &t.MeetingID,
			&t.DueDate, &t.Status, &t.Priority, &t.Recurrence, &t.RejectionReason, &t.CompletionMessage,
			&attachments, &completionAttachments, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		_ = json.Unmarshal(attachments, &t.Attachments)
		_ = json.Unmarshal(completionAttachments, &t.CompletionAttachments)
		list = append(list, t)
	}
	return list, rows.Err()
}

func (s *Store) exportAuditLogs(ctx context.Context) ([]models.AuditLog, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, seq, ts, user_id, action, details, department FROM audit_logs ORDER BY seq`)
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

func (s *Store) exportNotifications(ctx context.Context) ([]models.AppNotification, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, recipient_id, type, title, message, read, link_to, reference_id, created_at
		FROM notifications ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.AppNotification
	for rows.Next() {
		var n models.AppNotification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Title, &n.Message, &n.Read,
			&n.LinkTo, &n.ReferenceID, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// Import replaces the entire entity store with the document's contents,
// preserving ids, timestamps and the audit sequence. Runs in one
// transaction: a failed import leaves the store untouched.
func (s *Store) Import(ctx context.Context, doc *Document) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"notifications", "audit_logs", "tasks", "meeting_finalizers",
		"meeting_attendees", "meetings", "designations", "users"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}

	for _, u := range doc.Users {
		_, err := tx.Exec(ctx, `INSERT INTO users (id, email, password_hash, full_name, role, department, team, region,
				reports_to, is_msd, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			u.ID, u.Email, u.PasswordHash, u.FullName, string(u.Role), string(u.Department),
			string(u.Team), string(u.Region), u.ReportsTo, u.IsMSD, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return err
		}
	}
	for _, d := range doc.Designations {
		if _, err := tx.Exec(ctx, `INSERT INTO designations (id, name, created_by, created_at) VALUES ($1, $2, $3, $4)`,
			d.ID, d.Name, d.CreatedBy, d.CreatedAt); err != nil {
			return err
		}
	}
	for i := range doc.Meetings {
		if err := importMeeting(ctx, tx, &doc.Meetings[i]); err != nil {
			return err
		}
	}
	for _, t := range doc.Tasks {
		attachments, _ := json.Marshal(t.Attachments)
		completionAttachments, _ := json.Marshal(t.CompletionAttachments)
		_, err := tx.Exec(ctx, `INSERT INTO tasks (id, title, description, assigned_to_id, assigned_by_id, meeting_id,
				due_date, status, priority, recurrence, rejection_reason, completion_message,
				attachments, completion_attachments, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			t.ID, t.Title, t.Description, t.AssignedToID, t.AssignedByID, t.MeetingID,
			t.DueDate, string(t.Status), string(t.Priority), string(t.Recurrence),
			t.RejectionReason, t.CompletionMessage, attachments, completionAttachments, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return err
		}
	}
	for _, e := range doc.AuditLogs {
		if _, err := tx.Exec(ctx, `INSERT INTO audit_logs (id, seq, ts, user_id, action, details, department)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.ID, e.Seq, e.Timestamp, e.UserID, string(e.Action), e.Details, string(e.Department)); err != nil {
			return err
		}
	}
	for _, n := range doc.Notifications {
		if _, err := tx.Exec(ctx, `INSERT INTO notifications (id, recipient_id, type, title, message, read, link_to, reference_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			n.ID, n.RecipientID, string(n.Type), n.Title, n.Message, n.Read,
			string(n.LinkTo), n.ReferenceID, n.CreatedAt); err != nil {
			return err
		}
	}

	// keep future audit inserts sequencing after the restored entries
	if _, err := tx.Exec(ctx,
		`SELECT setval('audit_logs_seq_seq', COALESCE((SELECT MAX(seq) FROM audit_logs), 1))`); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func importMeeting(ctx context.Context, tx pgx.Tx, m *models.Meeting) error {
	rejectedBy, _ := json.Marshal(m.RejectedBy)
	if m.RejectedBy == nil {
		rejectedBy = []byte(`{}`)
	}
	attachments, _ := json.Marshal(m.Attachments)
	if m.Attachments == nil {
		attachments = []byte(`[]`)
	}
	var minutes []byte
	if m.Minutes != nil {
		minutes, _ = json.Marshal(m.Minutes)
	}
	_, err := tx.Exec(ctx, `INSERT INTO meetings (id, title, description, start_time, end_time, location, department,
			team, region, organizer_id, leader_id, rejected_by, minutes, recap, type, recurrence,
			is_custom_room, travel_cities, attachments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		m.ID, m.Title, m.Description, m.StartTime, m.EndTime, m.Location, string(m.Department),
		string(m.Team), string(m.Region), m.OrganizerID, m.LeaderID, rejectedBy, minutes, m.Recap,
		string(m.Type), string(m.Recurrence), m.IsCustomRoom, m.TravelCities, attachments, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return err
	}
	for _, userID := range m.Attendees {
		if _, err := tx.Exec(ctx,
			`INSERT INTO meeting_attendees (meeting_id, user_id) VALUES ($1, $2)`, m.ID, userID); err != nil {
			return err
		}
	}
	for _, userID := range m.FinalizedBy {
		if _, err := tx.Exec(ctx,
			`INSERT INTO meeting_finalizers (meeting_id, user_id) VALUES ($1, $2)`, m.ID, userID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) listIDs(ctx context.Context, q string, arg interface{}) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, q, arg)
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
