package transport

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Ref struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type AgentRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type EntryResponse struct {
	ID        uuid.UUID `json:"id"`
	Lead      Ref       `json:"lead"`
	Agent     *AgentRef `json:"agent"`
	OldStatus *Ref      `json:"oldStatus"`
	NewStatus *Ref      `json:"newStatus"`
	Note      *string   `json:"note"`
	IsPrivate bool      `json:"isPrivate"`
	Timestamp time.Time `json:"timestamp"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type ListResponse struct {
	Logs       []EntryResponse `json:"logs"`
	Pagination Pagination      `json:"pagination"`
}

// Query is the admin activity search.
type Query struct {
	LeadID         *uuid.UUID
	AgentID        *uuid.UUID
	StartDate      *time.Time
	EndDate        *time.Time
	IncludePrivate bool
	Page           int
	Limit          int
}
