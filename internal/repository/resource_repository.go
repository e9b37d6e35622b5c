package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhub/studyhub-backend/internal/model"
)

// ResourceRepository handles study resource data access.
type ResourceRepository struct {
	pool *pgxpool.Pool
}

// NewResourceRepository creates a new ResourceRepository.
func NewResourceRepository(pool *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

// GetByID retrieves a resource by its ID.
func (r *ResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Resource, error) {
	res := &model.Resource{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, subject_id, title, description, type, url, order_index, created_at
		 FROM resources WHERE id = $1`, id,
	).Scan(&res.ID, &res.SubjectID, &res.Title, &res.Description, &res.Type, &res.URL, &res.OrderIndex, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListBySubject retrieves the resources of one subject, newest first.
func (r *ResourceRepository) ListBySubject(ctx context.Context, subjectID int) ([]model.Resource, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, subject_id, title, description, type, url, order_index, created_at
		 FROM resources WHERE subject_id = $1 ORDER BY order_index DESC, id`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResources(rows)
}

// ListAll retrieves every resource, newest first. Used by the admin dashboard
// and the live feed snapshot.
func (r *ResourceRepository) ListAll(ctx context.Context) ([]model.Resource, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, subject_id, title, description, type, url, order_index, created_at
		 FROM resources ORDER BY order_index DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResources(rows)
}

// Create inserts a new resource.
func (r *ResourceRepository) Create(ctx context.Context, res *model.Resource) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO resources (id, subject_id, title, description, type, url, order_index)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		res.ID, res.SubjectID, res.Title, res.Description, res.Type, res.URL, res.OrderIndex,
	).Scan(&res.CreatedAt)
}

// Update modifies the editable fields of a resource. Type, subject, and
// order_index are fixed at creation.
func (r *ResourceRepository) Update(ctx context.Context, res *model.Resource) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE resources SET title = $1, description = $2, url = $3 WHERE id = $4`,
		res.Title, res.Description, res.URL, res.ID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a resource by its ID.
func (r *ResourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountBySubject returns per-subject resource counts for analytics.
func (r *ResourceRepository) CountBySubject(ctx context.Context) (map[int]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT subject_id, COUNT(*) FROM resources GROUP BY subject_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var subjectID, n int
		if err := rows.Scan(&subjectID, &n); err != nil {
			return nil, err
		}
		counts[subjectID] = n
	}
	return counts, rows.Err()
}

func scanResources(rows pgx.Rows) ([]model.Resource, error) {
	var resources []model.Resource
	for rows.Next() {
		var res model.Resource
		if err := rows.Scan(&res.ID, &res.SubjectID, &res.Title, &res.Description, &res.Type, &res.URL, &res.OrderIndex, &res.CreatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}
