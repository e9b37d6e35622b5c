package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app feed entry, typically written as the best-effort
// side step of a resource creation. Link is a deep link into the portal.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"`
}
