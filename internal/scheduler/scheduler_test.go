package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdirazajaffri/leads-management-system/internal/email"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
)

type schedulerConfig struct {
	redisURL string
}

func (c schedulerConfig) GetRedisURL() string          { return c.redisURL }
func (c schedulerConfig) GetRedisTLSInsecure() bool    { return false }
func (c schedulerConfig) GetAsynqQueueName() string    { return "" }
func (c schedulerConfig) GetAsynqConcurrency() int     { return 0 }
func (c schedulerConfig) GetCallbackReminderHour() int { return 9 }
func (c schedulerConfig) IsSchedulerEnabled() bool     { return c.redisURL != "" }

type fakeStore struct {
	reminder Reminder
	err      error
	marked   int
}

func (s *fakeStore) GetReminder(context.Context, uuid.UUID) (Reminder, error) {
	return s.reminder, s.err
}

func (s *fakeStore) MarkReminded(context.Context, uuid.UUID) (bool, error) {
	s.marked++
	return true, nil
}

type fakeSender struct {
	to   []string
	sent []email.CallbackReminder
	err  error
}

func (s *fakeSender) SendCallbackReminder(_ context.Context, to string, r email.CallbackReminder) error {
	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, to)
	s.sent = append(s.sent, r)
	return nil
}

func strPtr(s string) *string { return &s }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newHandler(store ReminderStore, sender email.Sender, now time.Time) *ReminderHandler {
	h := NewReminderHandler(store, sender, 9, logger.NewWriter("production", io.Discard))
	h.loc = time.UTC
	h.now = func() time.Time { return now }
	return h
}

func TestReminderAt(t *testing.T) {
	day := date(2026, time.March, 4)

	assert.Equal(t, time.Date(2026, time.March, 4, 14, 30, 0, 0, time.UTC), ReminderAt(day, strPtr("14:30"), 9, time.UTC))
	assert.Equal(t, time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC), ReminderAt(day, nil, 9, time.UTC))
	assert.Equal(t, time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC), ReminderAt(day, strPtr("late"), 9, time.UTC))
}

func TestTaskPayloadRoundTrip(t *testing.T) {
	id := uuid.NewString()
	task, err := NewCallbackReminderTask(CallbackReminderPayload{CallbackID: id})
	require.NoError(t, err)
	assert.Equal(t, TaskCallbackReminder, task.Type())

	payload, err := ParseCallbackReminderPayload(task)
	require.NoError(t, err)
	assert.Equal(t, id, payload.CallbackID)

	_, err = ParseCallbackReminderPayload(asynq.NewTask(TaskCallbackReminder, []byte("{")))
	assert.Error(t, err)
}

func TestProcessSendsAndMarks(t *testing.T) {
	store := &fakeStore{reminder: Reminder{
		CallbackID:    uuid.New(),
		ScheduledDate: date(2026, time.March, 4),
		ScheduledTime: strPtr("10:00"),
		Notes:         strPtr("ask about pricing"),
		LeadName:      "Ada",
		LeadPhone:     "+923001234567",
		AgentName:     "Sam",
		AgentEmail:    "sam@example.com",
	}}
	sender := &fakeSender{}
	h := newHandler(store, sender, time.Date(2026, time.March, 4, 10, 0, 5, 0, time.UTC))

	require.NoError(t, h.Process(context.Background(), CallbackReminderPayload{CallbackID: uuid.NewString()}))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"sam@example.com"}, sender.to)
	assert.Equal(t, "2026-03-04", sender.sent[0].ScheduledDate)
	assert.Equal(t, "10:00", sender.sent[0].ScheduledTime)
	assert.Equal(t, "ask about pricing", sender.sent[0].Notes)
	assert.Equal(t, 1, store.marked)
}

func TestProcessSkips(t *testing.T) {
	now := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)
	reminded := now.Add(-time.Hour)
	base := Reminder{ScheduledDate: date(2026, time.March, 4), AgentEmail: "sam@example.com"}

	cases := map[string]func(r *Reminder){
		"completed":   func(r *Reminder) { r.Completed = true },
		"reminded":    func(r *Reminder) { r.RemindedAt = &reminded },
		"unassigned":  func(r *Reminder) { r.AgentEmail = "" },
		"rescheduled": func(r *Reminder) { r.ScheduledDate = date(2026, time.March, 6) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			rem := base
			mutate(&rem)
			store := &fakeStore{reminder: rem}
			sender := &fakeSender{}

			require.NoError(t, newHandler(store, sender, now).Process(context.Background(), CallbackReminderPayload{CallbackID: uuid.NewString()}))
			assert.Empty(t, sender.sent)
			assert.Zero(t, store.marked)
		})
	}
}

func TestProcessDeletedCallback(t *testing.T) {
	store := &fakeStore{err: ErrReminderNotFound}
	sender := &fakeSender{}
	assert.NoError(t, newHandler(store, sender, time.Now()).Process(context.Background(), CallbackReminderPayload{CallbackID: uuid.NewString()}))
	assert.Empty(t, sender.sent)
}

func TestProcessSendFailureIsRetried(t *testing.T) {
	store := &fakeStore{reminder: Reminder{ScheduledDate: date(2026, time.March, 4), AgentEmail: "sam@example.com"}}
	sender := &fakeSender{err: errors.New("smtp down")}
	h := newHandler(store, sender, time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC))

	assert.EqualError(t, h.Process(context.Background(), CallbackReminderPayload{CallbackID: uuid.NewString()}), "smtp down")
	assert.Zero(t, store.marked)
}

func TestProcessRejectsBadPayload(t *testing.T) {
	h := newHandler(&fakeStore{}, &fakeSender{}, time.Now())
	assert.Error(t, h.Process(context.Background(), CallbackReminderPayload{CallbackID: "nope"}))
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	assert.NoError(t, c.ScheduleCallbackReminder(context.Background(), CallbackReminderPayload{}, time.Now()))
	assert.NoError(t, c.Close())
}

func TestNewClientRequiresRedis(t *testing.T) {
	_, err := NewClient(schedulerConfig{})
	assert.Error(t, err)
}

func TestRedisHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	h, err := NewRedisHealth(schedulerConfig{redisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	assert.NoError(t, h.Ping(context.Background()))

	mr.SetError("LOADING")
	assert.Error(t, h.Ping(context.Background()))
}
