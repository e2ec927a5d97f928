package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/platform/datatable"
)

// DateLayout is the wire format of scheduledDate.
const DateLayout = "2006-01-02"

type CreateCallbackRequest struct {
	LeadID        uuid.UUID `json:"leadId" validate:"required"`
	ScheduledDate string    `json:"scheduledDate" validate:"required,datetime=2006-01-02"`
	ScheduledTime *string   `json:"scheduledTime" validate:"omitempty,timeofday"`
	Notes         *string   `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateCallbackRequest is a partial update. An empty scheduledTime clears
// the time of day, so the handler checks its format itself.
type UpdateCallbackRequest struct {
	Completed     *bool   `json:"completed"`
	ScheduledDate *string `json:"scheduledDate" validate:"omitempty,datetime=2006-01-02"`
	ScheduledTime *string `json:"scheduledTime"`
	Notes         *string `json:"notes" validate:"omitempty,max=2000"`
}

type LeadSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
}

type CallbackResponse struct {
	ID            uuid.UUID   `json:"id"`
	LeadID        uuid.UUID   `json:"leadId"`
	ScheduledDate string      `json:"scheduledDate"`
	ScheduledTime *string     `json:"scheduledTime"`
	Notes         *string     `json:"notes"`
	Completed     bool        `json:"completed"`
	CompletedAt   *time.Time  `json:"completedAt"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	Lead          LeadSummary `json:"lead"`
}

type CallbackListResponse = datatable.Page[CallbackResponse]

type DeleteCallbackResponse struct {
	Success bool `json:"success"`
}
