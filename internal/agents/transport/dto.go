package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/platform/datatable"
)

type CreateAgentRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
}

type UpdateAgentRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
}

type AgentResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	ActiveLeads int       `json:"activeLeads"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type AgentListResponse = datatable.Page[AgentResponse]

type DeleteAgentResponse struct {
	Success         bool  `json:"success"`
	UnassignedLeads int64 `json:"unassignedLeads"`
}
