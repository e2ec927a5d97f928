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

	"github.com/mehdirazajaffri/leads-management-system/internal/agents/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/agents/transport"
	"github.com/mehdirazajaffri/leads-management-system/internal/events"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/datatable"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
)

var agentColumns = []string{"id", "email", "name", "role", "active_leads", "created_at", "updated_at"}

type captureBus struct {
	events []events.Event
}

func (b *captureBus) Publish(_ context.Context, e events.Event) { b.events = append(b.events, e) }
func (b *captureBus) PublishSync(_ context.Context, e events.Event) error {
	b.events = append(b.events, e)
	return nil
}
func (b *captureBus) Subscribe(string, events.Handler) {}

func newService(t *testing.T) (*Service, pgxmock.PgxPoolIface, *captureBus) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	bus := &captureBus{}
	return New(repository.New(mock), bus, logger.NewWriter("production", io.Discard)), mock, bus
}

func TestCreateForcesAgentRoleAndHashes(t *testing.T) {
	svc, mock, _ := newService(t)
	now := time.Now()
	id := uuid.New()

	mock.ExpectQuery("SELECT EXISTS").WithArgs("sam@example.com", (*uuid.UUID)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("sam@example.com", pgxmock.AnyArg(), "Sam Agent", "AGENT").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "role", "created_at", "updated_at"}).
			AddRow(id, "sam@example.com", "Sam Agent", "AGENT", now, now))

	res, err := svc.Create(context.Background(), transport.CreateAgentRequest{
		Email: " Sam@Example.com ", Password: "password1", Name: "Sam  Agent",
	})
	require.NoError(t, err)
	assert.Equal(t, "AGENT", res.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc, mock, _ := newService(t)
	mock.ExpectQuery("SELECT EXISTS").WithArgs("sam@example.com", (*uuid.UUID)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.Create(context.Background(), transport.CreateAgentRequest{
		Email: "sam@example.com", Password: "password1", Name: "Sam",
	})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.EqualError(t, err, "Email already exists")
}

func TestListAppliesTable(t *testing.T) {
	svc, mock, _ := newService(t)
	now := time.Now()
	mock.ExpectQuery("FROM users u").WillReturnRows(pgxmock.NewRows(agentColumns).
		AddRow(uuid.New(), "a@example.com", "Alice", "AGENT", 2, now, now).
		AddRow(uuid.New(), "b@example.com", "Bob", "AGENT", 7, now, now))

	page, err := svc.List(context.Background(), datatable.State{SortColumn: "activeLeads", SortDir: "desc"})
	require.NoError(t, err)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "Bob", page.Rows[0].Name)
}

func TestUpdatePassword(t *testing.T) {
	svc, mock, _ := newService(t)
	id := uuid.New()
	now := time.Now()
	pw := "new-password"

	mock.ExpectExec("UPDATE users").
		WithArgs(id, (*string)(nil), (*string)(nil), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("FROM users u").WithArgs(id).
		WillReturnRows(pgxmock.NewRows(agentColumns).AddRow(id, "a@example.com", "Alice", "AGENT", 0, now, now))

	_, err := svc.Update(context.Background(), id, transport.UpdateAgentRequest{Password: &pw})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUnassignsAndPublishes(t *testing.T) {
	svc, mock, bus := newService(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE leads SET assigned_to_id = NULL").WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 4))
	mock.ExpectExec("DELETE FROM users").WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	res, err := svc.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.UnassignedLeads)
	require.Len(t, bus.events, 1)
	assert.Equal(t, "agents.agent.deleted", bus.events[0].EventName())
}

func TestDeleteMissingAgentRollsBack(t *testing.T) {
	svc, mock, bus := newService(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE leads").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec("DELETE FROM users").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	_, err := svc.Delete(context.Background(), id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Empty(t, bus.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}
