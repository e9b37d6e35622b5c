package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhub/studyhub-backend/internal/model"
)

// PrincipalRepository handles portal user data access.
type PrincipalRepository struct {
	pool *pgxpool.Pool
}

// NewPrincipalRepository creates a new PrincipalRepository.
func NewPrincipalRepository(pool *pgxpool.Pool) *PrincipalRepository {
	return &PrincipalRepository{pool: pool}
}

// GetByID retrieves a principal by its ID.
func (r *PrincipalRepository) GetByID(ctx context.Context, id int) (*model.Principal, error) {
	p := &model.Principal{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, avatar_url, created_at FROM principals WHERE id = $1`, id,
	).Scan(&p.ID, &p.Email, &p.Name, &p.AvatarURL, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByEmail retrieves a principal by email.
func (r *PrincipalRepository) GetByEmail(ctx context.Context, email string) (*model.Principal, error) {
	p := &model.Principal{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, avatar_url, created_at FROM principals WHERE LOWER(email) = LOWER($1)`, email,
	).Scan(&p.ID, &p.Email, &p.Name, &p.AvatarURL, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Upsert creates the principal on first sign-in and refreshes the profile
// fields on every later one.
func (r *PrincipalRepository) Upsert(ctx context.Context, p *model.Principal) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO principals (email, name, avatar_url)
		 VALUES (LOWER($1), $2, $3)
		 ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, avatar_url = EXCLUDED.avatar_url
		 RETURNING id, email, created_at`,
		p.Email, p.Name, p.AvatarURL,
	).Scan(&p.ID, &p.Email, &p.CreatedAt)
}

// List retrieves every registered principal ordered by email. Used by the
// email broadcast fan-out.
func (r *PrincipalRepository) List(ctx context.Context) ([]model.Principal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, email, name, avatar_url, created_at FROM principals ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var principals []model.Principal
	for rows.Next() {
		var p model.Principal
		if err := rows.Scan(&p.ID, &p.Email, &p.Name, &p.AvatarURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		principals = append(principals, p)
	}
	return principals, rows.Err()
}

// Count returns the total number of registered principals.
func (r *PrincipalRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM principals`).Scan(&n)
	return n, err
}
