package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhub/studyhub-backend/internal/model"
)

// SubjectRepository handles subject catalog data access.
type SubjectRepository struct {
	pool *pgxpool.Pool
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

// GetByID retrieves a subject by its ID.
func (r *SubjectRepository) GetByID(ctx context.Context, id int) (*model.Subject, error) {
	s := &model.Subject{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, instructor, icon, color, order_index, created_at, updated_at
		 FROM subjects WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Instructor, &s.Icon, &s.Color, &s.OrderIndex, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves all subjects in display order. Equal order_index values are
// tie-broken by id so the ordering is total and stable.
func (r *SubjectRepository) List(ctx context.Context) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, instructor, icon, color, order_index, created_at, updated_at
		 FROM subjects ORDER BY order_index, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Instructor, &s.Icon, &s.Color, &s.OrderIndex, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// Create inserts a new subject at the end of the display order. The
// order_index is computed as MAX+1 inside the statement; two concurrent
// creates can still collide, which the tie-break in List tolerates.
func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO subjects (name, instructor, icon, color, order_index)
		 VALUES ($1, $2, $3, $4, (SELECT COALESCE(MAX(order_index), 0) + 1 FROM subjects))
		 RETURNING id, order_index, created_at, updated_at`,
		s.Name, s.Instructor, s.Icon, s.Color,
	).Scan(&s.ID, &s.OrderIndex, &s.CreatedAt, &s.UpdatedAt)
}

// Update modifies an existing subject. The order_index is never touched here;
// Swap is the only reorder primitive.
func (r *SubjectRepository) Update(ctx context.Context, s *model.Subject) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE subjects SET name = $1, instructor = $2, icon = $3, color = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5`,
		s.Name, s.Instructor, s.Icon, s.Color, s.ID,
	)
	return err
}

// SwapOrder exchanges the order_index of two subjects in one transaction.
// Returns pgx.ErrNoRows when either subject does not exist.
func (r *SubjectRepository) SwapOrder(ctx context.Context, idA, idB int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var orderA, orderB int
	if err := tx.QueryRow(ctx,
		`SELECT order_index FROM subjects WHERE id = $1 FOR UPDATE`, idA,
	).Scan(&orderA); err != nil {
		return err
	}
	if err := tx.QueryRow(ctx,
		`SELECT order_index FROM subjects WHERE id = $1 FOR UPDATE`, idB,
	).Scan(&orderB); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE subjects SET order_index = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, orderB, idA,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE subjects SET order_index = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, orderA, idB,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Delete removes a subject by its ID. Resources referencing the subject are
// left untouched; they become orphans rather than being cascaded away.
func (r *SubjectRepository) Delete(ctx context.Context, id int) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
