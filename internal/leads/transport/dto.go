package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/platform/datatable"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Request DTOs
type CreateLeadRequest struct {
	Name           string     `json:"name" validate:"required,min=1,max=200"`
	Phone          string     `json:"phone" validate:"required,min=5,max=30"`
	Email          string     `json:"email,omitempty" validate:"omitempty,email,max=254"`
	SourcePlatform string     `json:"sourcePlatform" validate:"max=100"`
	CampaignName   string     `json:"campaignName" validate:"max=200"`
	StatusID       uuid.UUID  `json:"statusId" validate:"required"`
	AssignedToID   *uuid.UUID `json:"assignedToId,omitempty"`
}

// UpdateLeadStatusRequest moves a lead to StatusID. CallbackDate is only
// used when the target is "Scheduled Callback". Admins may omit StatusID to
// attach a note without changing the status.
type UpdateLeadStatusRequest struct {
	StatusID      *uuid.UUID `json:"statusId,omitempty"`
	Note          *string    `json:"note,omitempty" validate:"omitempty,max=5000"`
	CallbackDate  *string    `json:"callbackDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CallbackTime  *string    `json:"callbackTime,omitempty" validate:"omitempty,timeofday"`
	CallbackNotes *string    `json:"callbackNotes,omitempty" validate:"omitempty,max=2000"`
}

type BulkUpdateRequest struct {
	LeadIDs      []uuid.UUID  `json:"leadIds" validate:"required,min=1,max=1000"`
	StatusID     *uuid.UUID   `json:"statusId,omitempty"`
	AssignedToID OptionalUUID `json:"assignedToId,omitempty" validate:"-"`
	IsArchived   *bool        `json:"isArchived,omitempty"`
}

type BulkAssignRequest struct {
	LeadIDs []uuid.UUID `json:"leadIds" validate:"required,min=1,max=1000"`
	AgentID uuid.UUID   `json:"agentId" validate:"required"`
}

type BulkArchiveRequest struct {
	LeadIDs []uuid.UUID `json:"leadIds" validate:"required,min=1,max=1000"`
}

type AddNoteRequest struct {
	Content   string `json:"content" validate:"required,min=1,max=5000"`
	IsPrivate bool   `json:"isPrivate"`
}

// ListFilters are the query-string filters shared by the admin list and the export.
type ListFilters struct {
	AgentID        *uuid.UUID
	StatusID       *uuid.UUID
	SourcePlatform string
	CampaignName   string
	IsArchived     bool
	Search         string
	StartDate      *time.Time
	EndDate        *time.Time
}

// Response DTOs
type StatusResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	IsFinal bool      `json:"isFinal"`
}

type AgentRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type LeadResponse struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	Phone           string         `json:"phone"`
	Email           string         `json:"email"`
	SourcePlatform  string         `json:"sourcePlatform"`
	CampaignName    string         `json:"campaignName"`
	Status          StatusResponse `json:"status"`
	AssignedTo      *AgentRef      `json:"assignedTo,omitempty"`
	IsArchived      bool           `json:"isArchived"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	LastContactedAt *time.Time     `json:"lastContactedAt,omitempty"`
}

type LeadDetailResponse struct {
	LeadResponse
	Callbacks []CallbackResponse `json:"callbacks"`
}

type CallbackResponse struct {
	ID            uuid.UUID  `json:"id"`
	LeadID        uuid.UUID  `json:"leadId"`
	ScheduledDate string     `json:"scheduledDate"`
	ScheduledTime *string    `json:"scheduledTime,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type ActivityLogResponse struct {
	ID          uuid.UUID  `json:"id"`
	LeadID      uuid.UUID  `json:"leadId"`
	AgentID     *uuid.UUID `json:"agentId,omitempty"`
	OldStatusID *uuid.UUID `json:"oldStatusId,omitempty"`
	NewStatusID *uuid.UUID `json:"newStatusId,omitempty"`
	Note        *string    `json:"note,omitempty"`
	IsPrivate   bool       `json:"isPrivate"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type TransitionResponse struct {
	LeadID      uuid.UUID            `json:"leadId"`
	Changed     bool                 `json:"changed"`
	OldStatus   StatusResponse       `json:"oldStatus"`
	NewStatus   StatusResponse       `json:"newStatus"`
	ActivityLog *ActivityLogResponse `json:"activityLog,omitempty"`
	Callback    *CallbackResponse    `json:"callback,omitempty"`
	Lead        *LeadResponse        `json:"lead,omitempty"`
}

// LeadListResponse is one page of the lead table.
type LeadListResponse = datatable.Page[LeadResponse]

// BulkResult reports how many of the requested leads were changed.
type BulkResult struct {
	Requested int   `json:"requested"`
	Updated   int64 `json:"updated"`
	Failed    int64 `json:"failed"`
}

// Import DTOs
type ImportRow struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	SourcePlatform string `json:"sourcePlatform"`
	CampaignName   string `json:"campaignName"`
}

// RowError lists the validation failures of one data row (1-based).
type RowError struct {
	Row    int       `json:"row"`
	Data   ImportRow `json:"data"`
	Errors []string  `json:"errors"`
}

// DuplicateRow is a row that matched an existing lead or an earlier row.
// Reason is "phone", "email" or "batch".
type DuplicateRow struct {
	Row            int        `json:"row"`
	Reason         string     `json:"reason"`
	ExistingLeadID *uuid.UUID `json:"existingLeadId,omitempty"`
}

type ImportPreviewResponse struct {
	Valid            int         `json:"valid"`
	ErrorCount       int         `json:"errorCount"`
	Preview          []ImportRow `json:"preview"`
	ValidationErrors []RowError  `json:"validationErrors"`
}

type ImportResultResponse struct {
	Success          bool           `json:"success"`
	Imported         int            `json:"imported"`
	Updated          int            `json:"updated"`
	Skipped          int            `json:"skipped"`
	Errors           int            `json:"errors"`
	Duplicates       []DuplicateRow `json:"duplicates"`
	ValidationErrors []RowError     `json:"validationErrors"`
	ArchiveKey       string         `json:"archiveKey,omitempty"`
	ArchiveURL       string         `json:"archiveUrl,omitempty"`
}
