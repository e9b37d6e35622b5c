package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhub/studyhub-backend/internal/model"
)

// clearBatchSize bounds each DELETE issued by Clear so a huge log cannot
// hold locks for the whole table at once.
const clearBatchSize = 500

// ActivityLogRepository handles the append-only audit trail.
type ActivityLogRepository struct {
	pool *pgxpool.Pool
}

// NewActivityLogRepository creates a new ActivityLogRepository.
func NewActivityLogRepository(pool *pgxpool.Pool) *ActivityLogRepository {
	return &ActivityLogRepository{pool: pool}
}

// Append inserts an audit record.
func (r *ActivityLogRepository) Append(ctx context.Context, l *model.ActivityLog) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO activity_logs (actor_id, actor_email, action, details)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		l.ActorID, l.ActorEmail, l.Action, l.Details,
	).Scan(&l.ID, &l.CreatedAt)
}

// List retrieves the newest audit records, capped at limit.
func (r *ActivityLogRepository) List(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, actor_id, actor_email, action, details, created_at
		 FROM activity_logs ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.ActivityLog
	for rows.Next() {
		var l model.ActivityLog
		if err := rows.Scan(&l.ID, &l.ActorID, &l.ActorEmail, &l.Action, &l.Details, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// Clear deletes the whole log in batches and returns the number of rows
// removed.
func (r *ActivityLogRepository) Clear(ctx context.Context) (int64, error) {
	var total int64
	for {
		ct, err := r.pool.Exec(ctx,
			`DELETE FROM activity_logs WHERE id IN
			   (SELECT id FROM activity_logs LIMIT $1)`, clearBatchSize)
		if err != nil {
			return total, err
		}
		total += ct.RowsAffected()
		if ct.RowsAffected() < clearBatchSize {
			return total, nil
		}
	}
}
