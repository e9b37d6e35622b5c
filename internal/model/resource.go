package model

import (
	"time"

	"github.com/google/uuid"
)

// ResourceType distinguishes hosted files from external links.
type ResourceType string

const (
	ResourceTypePDF  ResourceType = "PDF"
	ResourceTypeLink ResourceType = "LINK"
)

// Resource is a study material attached to a subject. SubjectID carries no
// foreign key: deleting a subject leaves its resources in place with the old
// id (documented orphan behavior, not a bug). OrderIndex is the creation
// epoch in milliseconds, giving implicit recency order.
type Resource struct {
	ID          uuid.UUID    `json:"id"`
	SubjectID   int          `json:"subject_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        ResourceType `json:"type"`
	URL         string       `json:"url"`
	OrderIndex  int64        `json:"order_index"`
	CreatedAt   time.Time    `json:"created_at"`
}

// CreateResourceRequest is the payload for publishing a resource.
type CreateResourceRequest struct {
	SubjectID   int    `json:"subject_id" binding:"required"`
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Type        string `json:"type" binding:"required,oneof=PDF LINK"`
	URL         string `json:"url" binding:"required,url,max=2048"`
}

// UpdateResourceRequest is the payload for editing a resource.
type UpdateResourceRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	URL         string `json:"url" binding:"required,url,max=2048"`
}
