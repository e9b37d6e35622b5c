package model

import "time"

// Subject represents one entry in the subject catalog. OrderIndex defines
// the total display order; ties are tolerated and only affect tie-break.
type Subject struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Instructor string    `json:"instructor"`
	Icon       string    `json:"icon"`
	Color      string    `json:"color"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateSubjectRequest is the payload for creating a subject. OrderIndex is
// assigned server-side (max existing + 1).
type CreateSubjectRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Instructor string `json:"instructor" binding:"omitempty,max=100"`
	Icon       string `json:"icon" binding:"omitempty,max=50"`
	Color      string `json:"color" binding:"omitempty,max=50"`
}

// UpdateSubjectRequest is the payload for editing subject fields.
// OrderIndex is not editable here; reordering goes through swap.
type UpdateSubjectRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Instructor string `json:"instructor" binding:"omitempty,max=100"`
	Icon       string `json:"icon" binding:"omitempty,max=50"`
	Color      string `json:"color" binding:"omitempty,max=50"`
}

// SwapSubjectsRequest names the two subjects whose order indices are
// exchanged atomically. Swap is the only reordering primitive.
type SwapSubjectsRequest struct {
	OtherID int `json:"other_id" binding:"required"`
}
