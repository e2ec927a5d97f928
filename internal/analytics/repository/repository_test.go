package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadScopeNumbersPlaceholders(t *testing.T) {
	since := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	where, args := leadScope(Scope{Since: &since, Campaign: "Spring"}, 2)
	assert.Equal(t, "NOT l.is_archived AND l.created_at >= $2 AND l.campaign_name = $3", where)
	assert.Equal(t, []any{since, "Spring"}, args)

	where, args = leadScope(Scope{Campaign: "Spring"}, 1)
	assert.Equal(t, "NOT l.is_archived AND l.campaign_name = $1", where)
	assert.Equal(t, []any{"Spring"}, args)
}

func TestTotals(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FILTER \(WHERE st.name = \$1\)`).WithArgs(ConvertedStatus, "Spring").
		WillReturnRows(pgxmock.NewRows([]string{"total", "converted"}).AddRow(12, 3))

	totals, err := New(mock).Totals(context.Background(), Scope{Campaign: "Spring"})
	require.NoError(t, err)
	assert.Equal(t, Totals{Leads: 12, Converted: 3}, totals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessedSince(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	since := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	agentID := uuid.New()
	mock.ExpectQuery(`count\(DISTINCT a.lead_id\)`).WithArgs(since).
		WillReturnRows(pgxmock.NewRows([]string{"agent_id", "count"}).AddRow(agentID, 4))

	got, err := New(mock).ProcessedSince(context.Background(), since, "")
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int{agentID: 4}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
