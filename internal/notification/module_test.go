package notification

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdirazajaffri/leads-management-system/internal/events"
	"github.com/mehdirazajaffri/leads-management-system/internal/scheduler"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
)

type scheduled struct {
	payload scheduler.CallbackReminderPayload
	runAt   time.Time
}

type fakeScheduler struct {
	calls []scheduled
	err   error
}

func (f *fakeScheduler) ScheduleCallbackReminder(_ context.Context, p scheduler.CallbackReminderPayload, runAt time.Time) error {
	f.calls = append(f.calls, scheduled{payload: p, runAt: runAt})
	return f.err
}

func newModule(s scheduler.ReminderScheduler) *Module {
	m := New(s, 9, logger.NewWriter("production", io.Discard))
	m.loc = time.UTC
	return m
}

func TestCallbackScheduledQueuesReminder(t *testing.T) {
	fs := &fakeScheduler{}
	m := newModule(fs)
	cbID := uuid.New()
	tod := "16:45"

	err := m.Handle(context.Background(), events.CallbackScheduled{
		CallbackID:    cbID,
		LeadID:        uuid.New(),
		ScheduledDate: time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
		ScheduledTime: &tod,
	})
	require.NoError(t, err)
	require.Len(t, fs.calls, 1)
	assert.Equal(t, cbID.String(), fs.calls[0].payload.CallbackID)
	assert.Equal(t, time.Date(2026, time.March, 4, 16, 45, 0, 0, time.UTC), fs.calls[0].runAt)
}

func TestCallbackScheduledDefaultsToMorning(t *testing.T) {
	fs := &fakeScheduler{}
	m := newModule(fs)

	require.NoError(t, m.Handle(context.Background(), events.CallbackScheduled{
		CallbackID:    uuid.New(),
		ScheduledDate: time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
	}))
	assert.Equal(t, 9, fs.calls[0].runAt.Hour())
}

func TestCallbackScheduledSurfacesQueueErrors(t *testing.T) {
	m := newModule(&fakeScheduler{err: errors.New("redis down")})
	err := m.Handle(context.Background(), events.CallbackScheduled{CallbackID: uuid.New()})
	assert.EqualError(t, err, "redis down")
}

func TestWithoutQueueSchedulingIsSkipped(t *testing.T) {
	m := newModule(nil)
	assert.NoError(t, m.Handle(context.Background(), events.CallbackScheduled{CallbackID: uuid.New()}))
}

func TestBusDeliversToModule(t *testing.T) {
	fs := &fakeScheduler{}
	m := newModule(fs)
	bus := events.NewInMemoryBus(logger.NewWriter("production", io.Discard))
	m.RegisterHandlers(bus)

	require.NoError(t, bus.PublishSync(context.Background(), events.CallbackScheduled{CallbackID: uuid.New()}))
	assert.Len(t, fs.calls, 1)
}
