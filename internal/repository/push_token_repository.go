package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhub/studyhub-backend/internal/model"
)

// PushTokenRepository handles browser push delivery tokens.
type PushTokenRepository struct {
	pool *pgxpool.Pool
}

// NewPushTokenRepository creates a new PushTokenRepository.
func NewPushTokenRepository(pool *pgxpool.Pool) *PushTokenRepository {
	return &PushTokenRepository{pool: pool}
}

// Register stores a token for a principal. Re-registering the same token is
// a no-op; a token moving between principals follows the latest owner.
func (r *PushTokenRepository) Register(ctx context.Context, t *model.PushToken) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO push_tokens (token, principal_id)
		 VALUES ($1, $2)
		 ON CONFLICT (token) DO UPDATE SET principal_id = EXCLUDED.principal_id
		 RETURNING created_at`,
		t.Token, t.PrincipalID,
	).Scan(&t.CreatedAt)
}

// ListAll retrieves every registered token.
func (r *PushTokenRepository) ListAll(ctx context.Context) ([]model.PushToken, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT token, principal_id, created_at FROM push_tokens ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []model.PushToken
	for rows.Next() {
		var t model.PushToken
		if err := rows.Scan(&t.Token, &t.PrincipalID, &t.CreatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// Remove deletes tokens the gateway reported as dead.
func (r *PushTokenRepository) Remove(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`DELETE FROM push_tokens WHERE token = ANY($1)`, tokens)
	return err
}
