package model

import "time"

// ActivityLog is an append-only audit record. Rows are never mutated; the
// only delete is a permission-gated bulk clear, chunked to the store's batch
// limit.
type ActivityLog struct {
	ID         int64     `json:"id"`
	ActorID    int       `json:"actor_id"`
	ActorEmail string    `json:"actor_email"`
	Action     string    `json:"action"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}
