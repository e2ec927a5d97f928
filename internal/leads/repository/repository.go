package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mehdirazajaffri/leads-management-system/internal/leads/domain"
	"github.com/mehdirazajaffri/leads-management-system/platform/db"
)

var ErrNotFound = errors.New("lead not found")

// ErrStatusNotFound is returned by status lookups.
var ErrStatusNotFound = errors.New("status not found")

// Repository is the Postgres store for leads and the rows a lead owns.
type Repository struct {
	pool db.Pool
}

func New(pool db.Pool) *Repository {
	return &Repository{pool: pool}
}

// Begin opens a transaction on the underlying pool.
func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// WithTx returns a repository whose statements run inside tx.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return &Repository{pool: tx}
}

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetDetail(ctx context.Context, id uuid.UUID) (LeadDetail, error)
	List(ctx context.Context, params ListParams) ([]LeadDetail, error)
	ListOpenCallbacks(ctx context.Context, leadID uuid.UUID) ([]Callback, error)
	FindDuplicate(ctx context.Context, phoneDigits, email string) (Duplicate, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	BulkUpdate(ctx context.Context, ids []uuid.UUID, params BulkUpdateParams) (int64, error)
	BulkSetStatus(ctx context.Context, ids []uuid.UUID, actorID uuid.UUID, params BulkUpdateParams) (BulkStatusOutcome, error)
	InsertActivity(ctx context.Context, params ActivityParams) (ActivityLog, error)
}

// ReferenceReader resolves the statuses and agents a lead points at.
type ReferenceReader interface {
	GetStatus(ctx context.Context, id uuid.UUID) (domain.Status, error)
	ListStatuses(ctx context.Context) ([]domain.Status, error)
	IsAgent(ctx context.Context, id uuid.UUID) (bool, error)
}

// =====================================
// Models
// =====================================

type Lead struct {
	ID              uuid.UUID
	Name            string
	Phone           string
	Email           string
	SourcePlatform  string
	CampaignName    string
	CurrentStatusID uuid.UUID
	AssignedToID    *uuid.UUID
	IsArchived      bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastContactedAt *time.Time
}

// LeadDetail is a lead joined with its status and assigned agent.
type LeadDetail struct {
	Lead
	Status     domain.Status
	AgentName  *string
	AgentEmail *string
}

type Callback struct {
	ID            uuid.UUID
	LeadID        uuid.UUID
	ScheduledDate time.Time
	ScheduledTime *string
	Notes         *string
	Completed     bool
	CompletedAt   *time.Time
	CreatedAt     time.Time
}

type ActivityLog struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	AgentID     *uuid.UUID
	OldStatusID *uuid.UUID
	NewStatusID *uuid.UUID
	Note        *string
	IsPrivate   bool
	CreatedAt   time.Time
}

// Duplicate identifies an existing lead that matches an incoming one.
type Duplicate struct {
	LeadID uuid.UUID
	// Reason is "phone" or "email".
	Reason string
}

type ListParams struct {
	AgentID        *uuid.UUID
	StatusID       *uuid.UUID
	SourcePlatform string
	CampaignName   string
	IsArchived     bool
	Search         string
	StartDate      *time.Time
	EndDate        *time.Time
}

type CreateLeadParams struct {
	Name            string
	Phone           string
	Email           string
	SourcePlatform  string
	CampaignName    string
	CurrentStatusID uuid.UUID
	AssignedToID    *uuid.UUID
}

// BulkUpdateParams describes a multi-lead update. Nil fields are left alone;
// SetAssignee distinguishes "unassign" (AssignedToID nil) from "keep".
type BulkUpdateParams struct {
	StatusID     *uuid.UUID
	SetAssignee  bool
	AssignedToID *uuid.UUID
	IsArchived   *bool
}

// BulkStatusOutcome counts the rows a bulk status change touched. Logged is
// the number of leads whose status actually changed.
type BulkStatusOutcome struct {
	Updated int64
	Logged  int64
}

type ActivityParams struct {
	LeadID      uuid.UUID
	AgentID     uuid.UUID
	OldStatusID *uuid.UUID
	NewStatusID *uuid.UUID
	Note        *string
	IsPrivate   bool
}

type CallbackParams struct {
	LeadID        uuid.UUID
	ScheduledDate time.Time
	ScheduledTime *string
	Notes         *string
}
