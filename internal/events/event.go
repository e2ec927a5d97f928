// Package events defines the domain events modules publish and aliases the
// platform bus so callers need a single import.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/platform/events"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadTransitioned is published after a status transition commits.
type LeadTransitioned struct {
	BaseEvent
	LeadID        uuid.UUID  `json:"leadId"`
	ActorID       uuid.UUID  `json:"actorId"`
	OldStatusID   uuid.UUID  `json:"oldStatusId"`
	NewStatusID   uuid.UUID  `json:"newStatusId"`
	NewStatusName string     `json:"newStatusName"`
	Changed       bool       `json:"changed"`
	ActivityLogID *uuid.UUID `json:"activityLogId,omitempty"`
}

func (e LeadTransitioned) EventName() string { return "leads.lead.transitioned" }

// LeadsImported is published after a CSV import commits.
type LeadsImported struct {
	BaseEvent
	ActorID  uuid.UUID `json:"actorId"`
	FileName string    `json:"fileName"`
	Imported int       `json:"imported"`
	Updated  int       `json:"updated"`
	Skipped  int       `json:"skipped"`
	Invalid  int       `json:"invalid"`
}

func (e LeadsImported) EventName() string { return "leads.import.completed" }

// =============================================================================
// Callback Domain Events
// =============================================================================

// CallbackScheduled is published when a callback row is created, either by a
// transition into "Scheduled Callback" or directly.
type CallbackScheduled struct {
	BaseEvent
	CallbackID    uuid.UUID `json:"callbackId"`
	LeadID        uuid.UUID `json:"leadId"`
	ScheduledDate time.Time `json:"scheduledDate"`
	ScheduledTime *string   `json:"scheduledTime,omitempty"`
}

func (e CallbackScheduled) EventName() string { return "callbacks.callback.scheduled" }

// =============================================================================
// Agent Domain Events
// =============================================================================

// AgentDeleted is published after an agent is removed and its leads unassigned.
type AgentDeleted struct {
	BaseEvent
	AgentID         uuid.UUID `json:"agentId"`
	UnassignedLeads int64     `json:"unassignedLeads"`
}

func (e AgentDeleted) EventName() string { return "agents.agent.deleted" }
