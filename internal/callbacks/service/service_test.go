package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdirazajaffri/leads-management-system/internal/callbacks/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/callbacks/transport"
	"github.com/mehdirazajaffri/leads-management-system/internal/events"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/datatable"
	"github.com/mehdirazajaffri/leads-management-system/platform/httpkit"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
)

var callbackColumns = []string{
	"id", "lead_id", "scheduled_date", "scheduled_time", "notes", "completed",
	"completed_at", "reminded_at", "created_at", "updated_at",
	"name", "phone", "email", "assigned_to_id",
}

type captureBus struct {
	events []events.Event
}

func (b *captureBus) Publish(_ context.Context, e events.Event) { b.events = append(b.events, e) }
func (b *captureBus) PublishSync(_ context.Context, e events.Event) error {
	b.events = append(b.events, e)
	return nil
}
func (b *captureBus) Subscribe(string, events.Handler) {}

type fakeLeads map[uuid.UUID]leads.Lead

func (f fakeLeads) GetLeadByID(_ context.Context, id uuid.UUID) (leads.Lead, error) {
	l, ok := f[id]
	if !ok {
		return leads.Lead{}, leads.ErrLeadNotFound
	}
	return l, nil
}

func newService(t *testing.T, lds fakeLeads) (*Service, pgxmock.PgxPoolIface, *captureBus) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	bus := &captureBus{}
	svc := New(repository.New(mock), lds, bus, logger.NewWriter("production", io.Discard))
	svc.now = func() time.Time { return time.Date(2026, time.March, 4, 15, 0, 0, 0, time.UTC) }
	return svc, mock, bus
}

func callbackRow(id, leadID uuid.UUID, date time.Time, tod *string, completed bool, owner *uuid.UUID) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(callbackColumns).AddRow(
		id, leadID, date, tod, (*string)(nil), completed,
		(*time.Time)(nil), (*time.Time)(nil), now, now,
		"Ada Lovelace", "+923001234567", "ada@example.com", owner,
	)
}

func strPtr(s string) *string { return &s }

var today = time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)

func TestListScopesAgentsToTheirLeads(t *testing.T) {
	svc, mock, _ := newService(t, nil)
	agentID := uuid.New()
	other := uuid.New()

	mock.ExpectQuery("FROM callbacks c").WithArgs(agentID, today).
		WillReturnRows(callbackRow(uuid.New(), uuid.New(), today, nil, false, &agentID))

	page, err := svc.List(context.Background(), httpkit.NewIdentity(agentID, httpkit.RoleAgent),
		ListQuery{AgentID: &other}, datatable.State{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "2026-03-04", page.Rows[0].ScheduledDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAdminSeesEveryoneCompleted(t *testing.T) {
	svc, mock, _ := newService(t, nil)

	mock.ExpectQuery(`AND c.completed ORDER BY`).WithArgs().
		WillReturnRows(pgxmock.NewRows(callbackColumns))

	_, err := svc.List(context.Background(), httpkit.NewIdentity(uuid.New(), httpkit.RoleAdmin),
		ListQuery{Filter: "completed"}, datatable.State{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRejectsUnknownFilter(t *testing.T) {
	svc, _, _ := newService(t, nil)
	_, err := svc.List(context.Background(), httpkit.NewIdentity(uuid.New(), httpkit.RoleAdmin),
		ListQuery{Filter: "someday"}, datatable.State{})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

func TestCreateChecksOwnership(t *testing.T) {
	owner := uuid.New()
	leadID := uuid.New()
	svc, _, _ := newService(t, fakeLeads{leadID: {ID: leadID, AssignedToID: &owner}})

	_, err := svc.Create(context.Background(), httpkit.NewIdentity(uuid.New(), httpkit.RoleAgent),
		transport.CreateCallbackRequest{LeadID: leadID, ScheduledDate: "2026-03-05"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.EqualError(t, err, "You do not have access to this lead")

	_, err = svc.Create(context.Background(), httpkit.NewIdentity(owner, httpkit.RoleAgent),
		transport.CreateCallbackRequest{LeadID: uuid.New(), ScheduledDate: "2026-03-05"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.EqualError(t, err, "Lead not found")
}

func TestCreateRejectsBadDate(t *testing.T) {
	svc, _, _ := newService(t, nil)
	_, err := svc.Create(context.Background(), httpkit.NewIdentity(uuid.New(), httpkit.RoleAdmin),
		transport.CreateCallbackRequest{LeadID: uuid.New(), ScheduledDate: "05/03/2026"})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

func TestCreatePublishesScheduled(t *testing.T) {
	owner := uuid.New()
	leadID := uuid.New()
	cbID := uuid.New()
	date := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	svc, mock, bus := newService(t, fakeLeads{leadID: {ID: leadID, AssignedToID: &owner}})

	mock.ExpectQuery("INSERT INTO callbacks").
		WithArgs(leadID, date, strPtr("10:30"), strPtr("call after lunch")).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(cbID))
	mock.ExpectQuery("WHERE c.id = \\$1").WithArgs(cbID).
		WillReturnRows(callbackRow(cbID, leadID, date, strPtr("10:30"), false, &owner))

	res, err := svc.Create(context.Background(), httpkit.NewIdentity(owner, httpkit.RoleAgent), transport.CreateCallbackRequest{
		LeadID:        leadID,
		ScheduledDate: "2026-03-05",
		ScheduledTime: strPtr(" 10:30 "),
		Notes:         strPtr("<b>call</b> after lunch"),
	})
	require.NoError(t, err)
	assert.Equal(t, cbID, res.ID)
	assert.Equal(t, "Ada Lovelace", res.Lead.Name)

	require.Len(t, bus.events, 1)
	ev := bus.events[0].(events.CallbackScheduled)
	assert.Equal(t, cbID, ev.CallbackID)
	assert.Equal(t, "10:30", *ev.ScheduledTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCompleteDoesNotReschedule(t *testing.T) {
	owner := uuid.New()
	cbID := uuid.New()
	leadID := uuid.New()
	svc, mock, bus := newService(t, nil)
	done := true

	mock.ExpectQuery("WHERE c.id = \\$1").WithArgs(cbID).
		WillReturnRows(callbackRow(cbID, leadID, today, nil, false, &owner))
	mock.ExpectExec("UPDATE callbacks SET").
		WithArgs(cbID, (*time.Time)(nil), false, (*string)(nil), (*string)(nil), &done).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("WHERE c.id = \\$1").WithArgs(cbID).
		WillReturnRows(callbackRow(cbID, leadID, today, nil, true, &owner))

	res, err := svc.Update(context.Background(), httpkit.NewIdentity(owner, httpkit.RoleAgent), cbID,
		transport.UpdateCallbackRequest{Completed: &done})
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Empty(t, bus.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRescheduleQueuesReminder(t *testing.T) {
	cbID := uuid.New()
	leadID := uuid.New()
	owner := uuid.New()
	next := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	svc, mock, bus := newService(t, nil)

	mock.ExpectQuery("WHERE c.id = \\$1").WithArgs(cbID).
		WillReturnRows(callbackRow(cbID, leadID, today, strPtr("09:00"), false, &owner))
	mock.ExpectExec("UPDATE callbacks SET").
		WithArgs(cbID, &next, true, (*string)(nil), (*string)(nil), (*bool)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("WHERE c.id = \\$1").WithArgs(cbID).
		WillReturnRows(callbackRow(cbID, leadID, next, nil, false, &owner))

	_, err := svc.Update(context.Background(), httpkit.NewIdentity(uuid.New(), httpkit.RoleAdmin), cbID,
		transport.UpdateCallbackRequest{ScheduledDate: strPtr("2026-03-09"), ScheduledTime: strPtr("")})
	require.NoError(t, err)
	require.Len(t, bus.events, 1)
	assert.Equal(t, next, bus.events[0].(events.CallbackScheduled).ScheduledDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteForbiddenForOtherAgent(t *testing.T) {
	cbID := uuid.New()
	owner := uuid.New()
	svc, mock, _ := newService(t, nil)

	mock.ExpectQuery("WHERE c.id = \\$1").WithArgs(cbID).
		WillReturnRows(callbackRow(cbID, uuid.New(), today, nil, false, &owner))

	_, err := svc.Delete(context.Background(), httpkit.NewIdentity(uuid.New(), httpkit.RoleAgent), cbID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.EqualError(t, err, "You do not have access to this callback")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissing(t *testing.T) {
	cbID := uuid.New()
	svc, mock, _ := newService(t, nil)

	mock.ExpectQuery("WHERE c.id = \\$1").WithArgs(cbID).
		WillReturnRows(pgxmock.NewRows(callbackColumns))

	_, err := svc.Delete(context.Background(), httpkit.NewIdentity(uuid.New(), httpkit.RoleAdmin), cbID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.EqualError(t, err, "Callback not found")
}

func TestDeleteByAdmin(t *testing.T) {
	cbID := uuid.New()
	svc, mock, _ := newService(t, nil)

	mock.ExpectQuery("WHERE c.id = \\$1").WithArgs(cbID).
		WillReturnRows(callbackRow(cbID, uuid.New(), today, nil, false, nil))
	mock.ExpectExec("DELETE FROM callbacks").WithArgs(cbID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	res, err := svc.Delete(context.Background(), httpkit.NewIdentity(uuid.New(), httpkit.RoleAdmin), cbID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}
