package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swisspharma/opsboard-backend/internal/models"
)

const userColumns = `id, email, password_hash, full_name, role, department, team, region, reports_to, is_msd, created_at, updated_at`

// Repository handles personnel and designation persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a personnel repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns every personnel record, sanitized for API responses.
func (r *Repository) List(ctx context.Context) ([]models.UserPublic, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.UserPublic
	for rows.Next() {
		var u models.User
		err := rows.Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.Role, &u.Department,
			&u.Team, &u.Region, &u.ReportsTo, &u.IsMSD, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, err
		}
		list = append(list, u.ToPublic())
	}
	return list, rows.Err()
}

// Create inserts a new personnel record.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	const q = `INSERT INTO users (email, password_hash, full_name, role, department, team, region, reports_to, is_msd)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, u.Email, u.Password, u.FullName, string(u.Role), string(u.Department),
		string(u.Team), string(u.Region), u.ReportsTo, u.IsMSD).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// Update persists changes to an existing personnel record. The password
// hash is updated only when non-empty.
func (r *Repository) Update(ctx context.Context, u *models.User) error {
	const q = `UPDATE users SET email = $1, full_name = $2, role = $3, department = $4, team = $5, region = $6,
			reports_to = $7, is_msd = $8,
			password_hash = CASE WHEN $9 <> '' THEN $9 ELSE password_hash END,
			updated_at = NOW()
		WHERE id = $10`
	_, err := r.pool.Exec(ctx, q, u.Email, u.FullName, string(u.Role), string(u.Department),
		string(u.Team), string(u.Region), u.ReportsTo, u.IsMSD, u.Password, u.ID)
	return err
}

// GetByID returns a single personnel record.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.Role, &u.Department,
			&u.Team, &u.Region, &u.ReportsTo, &u.IsMSD, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListDesignations returns all custom designations, newest first.
func (r *Repository) ListDesignations(ctx context.Context) ([]models.Designation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_by, created_at FROM designations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Designation
	for rows.Next() {
		var d models.Designation
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedBy, &d.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// CreateDesignation adds a custom designation. Duplicate names are
// rejected by the unique constraint.
func (r *Repository) CreateDesignation(ctx context.Context, d *models.Designation) error {
	const q = `INSERT INTO designations (name, created_by) VALUES ($1, $2) RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, d.Name, d.CreatedBy).Scan(&d.ID, &d.CreatedAt)
}
