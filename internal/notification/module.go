// Package notification reacts to domain events: it queues callback reminders
// and pushes live updates to connected dashboards.
package notification

import (
	"context"
	"time"

	"github.com/mehdirazajaffri/leads-management-system/internal/events"
	apphttp "github.com/mehdirazajaffri/leads-management-system/internal/http"
	"github.com/mehdirazajaffri/leads-management-system/internal/notification/sse"
	"github.com/mehdirazajaffri/leads-management-system/internal/scheduler"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
)

type Module struct {
	reminders    scheduler.ReminderScheduler
	reminderHour int
	loc          *time.Location
	stream       *sse.Service
	log          *logger.Logger
}

// New builds the module. reminders may be nil when no queue is configured.
func New(reminders scheduler.ReminderScheduler, reminderHour int, log *logger.Logger) *Module {
	return &Module{
		reminders:    reminders,
		reminderHour: reminderHour,
		loc:          time.Local,
		stream:       sse.New(log),
		log:          log,
	}
}

func (m *Module) Name() string {
	return "notification"
}

// RegisterRoutes mounts the live event stream.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/events/stream", m.stream.Handler())
}

// Stream exposes the SSE service so shutdown can close open connections.
func (m *Module) Stream() *sse.Service {
	return m.stream
}

// RegisterHandlers subscribes to the domain events the module reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadTransitioned{}.EventName(), m)
	bus.Subscribe(events.LeadsImported{}.EventName(), m)
	bus.Subscribe(events.CallbackScheduled{}.EventName(), m)
	bus.Subscribe(events.AgentDeleted{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadTransitioned:
		return m.handleLeadTransitioned(e)
	case events.LeadsImported:
		return m.handleLeadsImported(e)
	case events.CallbackScheduled:
		return m.handleCallbackScheduled(ctx, e)
	case events.AgentDeleted:
		return m.handleAgentDeleted(e)
	default:
		return nil
	}
}

func (m *Module) handleLeadTransitioned(e events.LeadTransitioned) error {
	if !e.Changed {
		return nil
	}
	ev := sse.Event{
		ID:      e.EventID().String(),
		Type:    sse.EventLeadTransitioned,
		LeadID:  &e.LeadID,
		Message: "Lead moved to " + e.NewStatusName,
		Data: map[string]any{
			"oldStatusId": e.OldStatusID,
			"newStatusId": e.NewStatusID,
			"actorId":     e.ActorID,
		},
	}
	m.stream.PublishToAdmins(ev)
	m.stream.Publish(e.ActorID, ev)
	return nil
}

func (m *Module) handleLeadsImported(e events.LeadsImported) error {
	m.stream.PublishToAdmins(sse.Event{
		ID:      e.EventID().String(),
		Type:    sse.EventLeadsImported,
		Message: e.FileName,
		Data: map[string]int{
			"imported": e.Imported,
			"updated":  e.Updated,
			"skipped":  e.Skipped,
			"invalid":  e.Invalid,
		},
	})
	return nil
}

func (m *Module) handleAgentDeleted(e events.AgentDeleted) error {
	m.stream.PublishToAdmins(sse.Event{
		ID:   e.EventID().String(),
		Type: sse.EventAgentDeleted,
		Data: map[string]any{"agentId": e.AgentID, "unassignedLeads": e.UnassignedLeads},
	})
	return nil
}

// handleCallbackScheduled queues the reminder for the callback's slot.
// Slots already in the past fire immediately.
func (m *Module) handleCallbackScheduled(ctx context.Context, e events.CallbackScheduled) error {
	m.stream.PublishToAdmins(sse.Event{
		ID:     e.EventID().String(),
		Type:   sse.EventCallbackScheduled,
		LeadID: &e.LeadID,
		Data:   map[string]any{"callbackId": e.CallbackID, "scheduledDate": e.ScheduledDate.Format("2006-01-02")},
	})

	if m.reminders == nil {
		return nil
	}
	runAt := scheduler.ReminderAt(e.ScheduledDate, e.ScheduledTime, m.reminderHour, m.loc)
	if err := m.reminders.ScheduleCallbackReminder(ctx, scheduler.CallbackReminderPayload{CallbackID: e.CallbackID.String()}, runAt); err != nil {
		m.log.Error("failed to schedule callback reminder", "callbackId", e.CallbackID, "error", err)
		return err
	}
	m.log.Info("callback reminder scheduled", "callbackId", e.CallbackID, "runAt", runAt)
	return nil
}

var _ apphttp.Module = (*Module)(nil)
