package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListQueryFilters(t *testing.T) {
	agentID := uuid.New()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	query, args := buildListQuery(ListParams{
		AgentID:      &agentID,
		CampaignName: "spring",
		Search:       "  jane ",
		StartDate:    &start,
	})

	lower := strings.ToLower(query)
	for _, fragment := range []string{
		"l.is_archived = $1",
		"l.assigned_to_id = $2",
		"l.campaign_name = $3",
		"l.created_at >= $4",
		"(l.name ilike $5 or l.email ilike $5 or l.phone ilike $5)",
		"order by l.created_at desc",
		"limit 10000",
	} {
		assert.Contains(t, lower, fragment)
	}
	assert.Equal(t, []any{false, agentID, "spring", start, "%jane%"}, args)
}

func TestBuildListQueryDefaultsToActiveLeads(t *testing.T) {
	query, args := buildListQuery(ListParams{})
	assert.NotContains(t, query, "$2")
	assert.Equal(t, []any{false}, args)
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestGetDetailNotFound(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)
	id := uuid.New()

	mock.ExpectQuery("FROM leads l").WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetDetail(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDetailScansJoinedColumns(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)
	id, statusID, agentID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now().UTC()
	agentName := "Alice"

	rows := pgxmock.NewRows([]string{
		"id", "name", "phone", "email", "source_platform", "campaign_name",
		"current_status_id", "assigned_to_id", "is_archived", "created_at", "updated_at", "last_contacted_at",
		"status_name", "is_final", "agent_name", "agent_email",
	}).AddRow(
		id, "Jane", "+15550001111", "jane@example.com", "Facebook", "Spring",
		statusID, &agentID, false, now, now, (*time.Time)(nil),
		"Busy", false, &agentName, (*string)(nil),
	)
	mock.ExpectQuery("FROM leads l").WithArgs(id).WillReturnRows(rows)

	d, err := repo.GetDetail(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, statusID, d.Status.ID)
	assert.Equal(t, "Busy", d.Status.Name)
	assert.Equal(t, &agentID, d.AssignedToID)
	assert.Equal(t, "Alice", *d.AgentName)
	assert.Nil(t, d.LastContactedAt)
}

func TestBulkUpdateReportsRowsAffected(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	archived := true

	mock.ExpectExec("UPDATE leads SET").
		WithArgs(ids, (*uuid.UUID)(nil), false, (*uuid.UUID)(nil), &archived).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	n, err := repo.BulkUpdate(context.Background(), ids, BulkUpdateParams{IsArchived: &archived})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkSetStatusGuardsAndLogs(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	statusID, actorID := uuid.New(), uuid.New()

	mock.ExpectQuery(`(?s)NOT cur\.is_final OR t\.is_final.*INSERT INTO activity_logs`).
		WithArgs(ids, &statusID, false, (*uuid.UUID)(nil), (*bool)(nil), actorID).
		WillReturnRows(pgxmock.NewRows([]string{"moved", "logged"}).AddRow(int64(1), int64(1)))

	out, err := repo.BulkSetStatus(context.Background(), ids, actorID, BulkUpdateParams{StatusID: &statusID})
	require.NoError(t, err)
	assert.Equal(t, BulkStatusOutcome{Updated: 1, Logged: 1}, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusOnArchivedLeadIsNotFound(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)
	leadID, statusID := uuid.New(), uuid.New()

	mock.ExpectExec("UPDATE leads").WithArgs(leadID, statusID).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.SetStatus(context.Background(), leadID, statusID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindDuplicate(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)
	existing := uuid.New()

	mock.ExpectQuery("SELECT id").WithArgs("15550001111", "jane@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "reason"}).AddRow(existing, "email"))

	dup, err := repo.FindDuplicate(context.Background(), "15550001111", "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, Duplicate{LeadID: existing, Reason: "email"}, dup)

	mock.ExpectQuery("SELECT id").WithArgs("1", "").WillReturnError(pgx.ErrNoRows)
	_, err = repo.FindDuplicate(context.Background(), "1", "")
	assert.ErrorIs(t, err, ErrNotFound)
}
