package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/internal/email"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
)

// ErrReminderNotFound is returned by a ReminderStore when the callback is gone.
var ErrReminderNotFound = errors.New("callback not found")

// Reminder is the callback state the reminder job acts on.
type Reminder struct {
	CallbackID    uuid.UUID
	ScheduledDate time.Time
	ScheduledTime *string
	Notes         *string
	Completed     bool
	RemindedAt    *time.Time
	LeadName      string
	LeadPhone     string
	LeadEmail     string
	AgentName     string
	AgentEmail    string
}

type ReminderStore interface {
	GetReminder(ctx context.Context, callbackID uuid.UUID) (Reminder, error)
	MarkReminded(ctx context.Context, callbackID uuid.UUID) (bool, error)
}

// ReminderAt is the moment a callback reminder fires: the scheduled date at
// its time of day, or at defaultHour when no time was given.
func ReminderAt(date time.Time, scheduledTime *string, defaultHour int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	hour, minute := defaultHour, 0
	if scheduledTime != nil {
		if t, err := time.Parse("15:04", strings.TrimSpace(*scheduledTime)); err == nil {
			hour, minute = t.Hour(), t.Minute()
		}
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
}

// ReminderHandler delivers a due callback reminder to the assigned agent.
type ReminderHandler struct {
	store       ReminderStore
	sender      email.Sender
	defaultHour int
	loc         *time.Location
	now         func() time.Time
	log         *logger.Logger
}

func NewReminderHandler(store ReminderStore, sender email.Sender, defaultHour int, log *logger.Logger) *ReminderHandler {
	return &ReminderHandler{
		store:       store,
		sender:      sender,
		defaultHour: defaultHour,
		loc:         time.Local,
		now:         time.Now,
		log:         log,
	}
}

// Process handles one reminder task. Completed, already reminded, deleted and
// rescheduled callbacks are skipped without error so the task is not retried.
func (h *ReminderHandler) Process(ctx context.Context, payload CallbackReminderPayload) error {
	callbackID, err := uuid.Parse(payload.CallbackID)
	if err != nil {
		return err
	}

	rem, err := h.store.GetReminder(ctx, callbackID)
	if errors.Is(err, ErrReminderNotFound) {
		h.log.Info("callback reminder skipped", "callbackId", callbackID, "reason", "deleted")
		return nil
	}
	if err != nil {
		return err
	}

	if rem.Completed || rem.RemindedAt != nil {
		return nil
	}
	// A later slot has its own task.
	if due := ReminderAt(rem.ScheduledDate, rem.ScheduledTime, h.defaultHour, h.loc); h.now().Before(due.Add(-time.Minute)) {
		h.log.Info("callback reminder skipped", "callbackId", callbackID, "reason", "rescheduled", "due", due)
		return nil
	}
	if rem.AgentEmail == "" {
		h.log.Info("callback reminder skipped", "callbackId", callbackID, "reason", "unassigned")
		return nil
	}

	if err := h.sender.SendCallbackReminder(ctx, rem.AgentEmail, toEmailReminder(rem)); err != nil {
		return err
	}

	claimed, err := h.store.MarkReminded(ctx, callbackID)
	if err != nil {
		return err
	}
	if claimed {
		h.log.Info("callback reminder sent", "callbackId", callbackID, "agent", rem.AgentEmail)
	}
	return nil
}

func toEmailReminder(rem Reminder) email.CallbackReminder {
	out := email.CallbackReminder{
		AgentName:     rem.AgentName,
		LeadName:      rem.LeadName,
		LeadPhone:     rem.LeadPhone,
		LeadEmail:     rem.LeadEmail,
		ScheduledDate: rem.ScheduledDate.Format("2006-01-02"),
	}
	if rem.ScheduledTime != nil {
		out.ScheduledTime = *rem.ScheduledTime
	}
	if rem.Notes != nil {
		out.Notes = *rem.Notes
	}
	return out
}
