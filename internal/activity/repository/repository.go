// Package repository reads the activity log.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/platform/db"
)

// Entry is an activity row with its lead, agent and status names resolved.
type Entry struct {
	ID            uuid.UUID
	LeadID        uuid.UUID
	LeadName      string
	AgentID       *uuid.UUID
	AgentName     *string
	AgentEmail    *string
	OldStatusID   *uuid.UUID
	OldStatusName *string
	NewStatusID   *uuid.UUID
	NewStatusName *string
	Note          *string
	IsPrivate     bool
	CreatedAt     time.Time
}

// Filter narrows a listing. Private rows are returned when IncludePrivate is
// set, or when PrivateOwnerID matches the row's author. A zero Limit returns
// every row.
type Filter struct {
	LeadID         *uuid.UUID
	AgentID        *uuid.UUID
	StartDate      *time.Time
	EndDate        *time.Time
	IncludePrivate bool
	PrivateOwnerID *uuid.UUID
	Limit          int
	Offset         int
}

type Repository struct {
	pool db.Querier
}

func New(pool db.Querier) *Repository {
	return &Repository{pool: pool}
}

// List returns one page of entries, newest first, and the total row count
// matching the filter.
func (r *Repository) List(ctx context.Context, f Filter) ([]Entry, int, error) {
	where, args := buildWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*)::int FROM activity_logs a WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := selectEntries + " WHERE " + where + " ORDER BY a.created_at DESC, a.id"
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.LeadID, &e.LeadName,
			&e.AgentID, &e.AgentName, &e.AgentEmail,
			&e.OldStatusID, &e.OldStatusName,
			&e.NewStatusID, &e.NewStatusName,
			&e.Note, &e.IsPrivate, &e.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return items, total, nil
}

const selectEntries = `
	SELECT a.id, a.lead_id, l.name,
		a.agent_id, u.name, u.email,
		a.old_status_id, os.name,
		a.new_status_id, ns.name,
		a.note, a.is_private, a.created_at
	FROM activity_logs a
	JOIN leads l ON l.id = a.lead_id
	LEFT JOIN users u ON u.id = a.agent_id
	LEFT JOIN statuses os ON os.id = a.old_status_id
	LEFT JOIN statuses ns ON ns.id = a.new_status_id`

func buildWhere(f Filter) (string, []any) {
	where := []string{"TRUE"}
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if f.LeadID != nil {
		add("a.lead_id = $%d", *f.LeadID)
	}
	if f.AgentID != nil {
		add("a.agent_id = $%d", *f.AgentID)
	}
	if f.StartDate != nil {
		add("a.created_at >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		add("a.created_at <= $%d", *f.EndDate)
	}
	if !f.IncludePrivate {
		if f.PrivateOwnerID != nil {
			add("(NOT a.is_private OR a.agent_id = $%d)", *f.PrivateOwnerID)
		} else {
			where = append(where, "NOT a.is_private")
		}
	}
	return strings.Join(where, " AND "), args
}
