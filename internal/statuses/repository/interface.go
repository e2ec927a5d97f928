package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status is a stage in the lead pipeline. Leads in a final status accept no
// further transitions.
type Status struct {
	ID        uuid.UUID
	Name      string
	IsFinal   bool
	LeadCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateParams contains parameters for creating a status.
type CreateParams struct {
	Name    string
	IsFinal bool
}

// UpdateParams contains parameters for updating a status. Nil fields are kept.
type UpdateParams struct {
	ID      uuid.UUID
	Name    *string
	IsFinal *bool
}

// StatusReader provides read operations for statuses.
type StatusReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Status, error)
	List(ctx context.Context) ([]Status, error)
}

// StatusWriter provides write operations for statuses.
type StatusWriter interface {
	Create(ctx context.Context, params CreateParams) (Status, error)
	Update(ctx context.Context, params UpdateParams) (Status, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository combines all status repository operations.
type Repository interface {
	StatusReader
	StatusWriter
}
