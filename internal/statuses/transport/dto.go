package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateStatusRequest contains data for creating a new status.
type CreateStatusRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=100"`
	IsFinal bool   `json:"isFinal"`
}

// UpdateStatusRequest contains data for updating an existing status.
type UpdateStatusRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	IsFinal *bool   `json:"isFinal,omitempty"`
}

// StatusResponse is a status with the number of leads currently in it.
type StatusResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsFinal   bool      `json:"isFinal"`
	LeadCount int       `json:"leadCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DeleteStatusResponse confirms a deletion.
type DeleteStatusResponse struct {
	Success bool `json:"success"`
}
