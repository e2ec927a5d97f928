package callbacks

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/internal/callbacks/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/scheduler"
)

// ReminderStore exposes callbacks to the reminder worker.
type ReminderStore struct {
	repo *repository.Repository
}

func NewReminderStore(repo *repository.Repository) *ReminderStore {
	return &ReminderStore{repo: repo}
}

func (s *ReminderStore) GetReminder(ctx context.Context, callbackID uuid.UUID) (scheduler.Reminder, error) {
	rem, err := s.repo.GetReminder(ctx, callbackID)
	if errors.Is(err, repository.ErrNotFound) {
		return scheduler.Reminder{}, scheduler.ErrReminderNotFound
	}
	if err != nil {
		return scheduler.Reminder{}, err
	}
	return scheduler.Reminder{
		CallbackID:    rem.ID,
		ScheduledDate: rem.ScheduledDate,
		ScheduledTime: rem.ScheduledTime,
		Notes:         rem.Notes,
		Completed:     rem.Completed,
		RemindedAt:    rem.RemindedAt,
		LeadName:      rem.LeadName,
		LeadPhone:     rem.LeadPhone,
		LeadEmail:     rem.LeadEmail,
		AgentName:     deref(rem.AgentName),
		AgentEmail:    deref(rem.AgentEmail),
	}, nil
}

func (s *ReminderStore) MarkReminded(ctx context.Context, callbackID uuid.UUID) (bool, error) {
	return s.repo.MarkReminded(ctx, callbackID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ scheduler.ReminderStore = (*ReminderStore)(nil)
