package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhub/studyhub-backend/internal/model"
)

const adminColumns = `id, email, name, role, password_hash,
	 can_manage_announcements, can_broadcast_email, can_send_push, can_upload_resources, can_edit_subjects,
	 created_at, updated_at`

// AdminRepository handles administrator data access.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// GetByID retrieves an admin by its ID.
func (r *AdminRepository) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
}

// GetByEmail retrieves an admin by email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE LOWER(email) = LOWER($1)`, email))
}

// List retrieves all admins ordered by email.
func (r *AdminRepository) List(ctx context.Context) ([]model.Admin, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+adminColumns+` FROM admins ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []model.Admin
	for rows.Next() {
		var a model.Admin
		if err := scanAdmin(rows, &a); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// Create inserts a new admin.
func (r *AdminRepository) Create(ctx context.Context, a *model.Admin) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO admins (email, name, role, password_hash,
		   can_manage_announcements, can_broadcast_email, can_send_push, can_upload_resources, can_edit_subjects)
		 VALUES (LOWER($1), $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		a.Email, a.Name, a.Role, a.PasswordHash,
		a.CanManageAnnouncements, a.CanBroadcastEmail, a.CanSendPush, a.CanUploadResources, a.CanEditSubjects,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// Update modifies an existing admin's role and permission flags.
func (r *AdminRepository) Update(ctx context.Context, a *model.Admin) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE admins SET name = $1, role = $2,
		   can_manage_announcements = $3, can_broadcast_email = $4, can_send_push = $5,
		   can_upload_resources = $6, can_edit_subjects = $7, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $8`,
		a.Name, a.Role,
		a.CanManageAnnouncements, a.CanBroadcastEmail, a.CanSendPush,
		a.CanUploadResources, a.CanEditSubjects, a.ID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdatePassword replaces an admin's password hash.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE admins SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes an admin by its ID.
func (r *AdminRepository) Delete(ctx context.Context, id int) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *AdminRepository) scanOne(row pgx.Row) (*model.Admin, error) {
	a := &model.Admin{}
	if err := scanAdmin(row, a); err != nil {
		return nil, err
	}
	return a, nil
}

func scanAdmin(row pgx.Row, a *model.Admin) error {
	return row.Scan(
		&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash,
		&a.CanManageAnnouncements, &a.CanBroadcastEmail, &a.CanSendPush, &a.CanUploadResources, &a.CanEditSubjects,
		&a.CreatedAt, &a.UpdatedAt,
	)
}
