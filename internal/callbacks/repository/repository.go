// Package repository stores scheduled callbacks.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mehdirazajaffri/leads-management-system/platform/db"
)

var ErrNotFound = errors.New("callback not found")

// Filters accepted by List.
const (
	FilterUpcoming  = "upcoming"
	FilterOverdue   = "overdue"
	FilterCompleted = "completed"
	FilterAll       = "all"
)

// Callback is a callback row joined with the lead it belongs to.
type Callback struct {
	ID            uuid.UUID
	LeadID        uuid.UUID
	ScheduledDate time.Time
	ScheduledTime *string
	Notes         *string
	Completed     bool
	CompletedAt   *time.Time
	RemindedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	LeadName     string
	LeadPhone    string
	LeadEmail    string
	AssignedToID *uuid.UUID
}

// ListParams scopes a listing. Today is the caller's calendar day and splits
// upcoming from overdue. A nil AgentID lists every agent's callbacks.
type ListParams struct {
	Filter  string
	AgentID *uuid.UUID
	Today   time.Time
}

type CreateParams struct {
	LeadID        uuid.UUID
	ScheduledDate time.Time
	ScheduledTime *string
	Notes         *string
}

// UpdateParams changes only the non-nil fields. SetTime distinguishes
// clearing the time of day (ScheduledTime nil) from leaving it alone.
type UpdateParams struct {
	ID            uuid.UUID
	ScheduledDate *time.Time
	SetTime       bool
	ScheduledTime *string
	Notes         *string
	Completed     *bool
}

// Reminder is what the reminder job needs to notify the assigned agent.
type Reminder struct {
	Callback
	AgentName  *string
	AgentEmail *string
}

type Repository struct {
	pool db.Querier
}

func New(pool db.Querier) *Repository {
	return &Repository{pool: pool}
}

const selectCallback = `
	SELECT c.id, c.lead_id, c.scheduled_date, c.scheduled_time, c.notes, c.completed,
		c.completed_at, c.reminded_at, c.created_at, c.updated_at,
		l.name, l.phone, l.email, l.assigned_to_id
	FROM callbacks c
	JOIN leads l ON l.id = c.lead_id`

func scanCallback(row pgx.Row, extra ...any) (Callback, error) {
	var cb Callback
	dest := []any{
		&cb.ID, &cb.LeadID, &cb.ScheduledDate, &cb.ScheduledTime, &cb.Notes, &cb.Completed,
		&cb.CompletedAt, &cb.RemindedAt, &cb.CreatedAt, &cb.UpdatedAt,
		&cb.LeadName, &cb.LeadPhone, &cb.LeadEmail, &cb.AssignedToID,
	}
	err := row.Scan(append(dest, extra...)...)
	return cb, err
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Callback, error) {
	query, args := buildListQuery(params)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Callback, 0)
	for rows.Next() {
		cb, err := scanCallback(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, cb)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

func buildListQuery(params ListParams) (string, []any) {
	query := selectCallback + " WHERE TRUE"
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(" AND "+clause, len(args))
	}

	if params.AgentID != nil {
		add("l.assigned_to_id = $%d", *params.AgentID)
	}
	switch params.Filter {
	case FilterUpcoming:
		add("NOT c.completed AND c.scheduled_date >= $%d", params.Today)
	case FilterOverdue:
		add("NOT c.completed AND c.scheduled_date < $%d", params.Today)
	case FilterCompleted:
		query += " AND c.completed"
	}

	query += " ORDER BY c.scheduled_date ASC, c.scheduled_time ASC NULLS FIRST"
	return query, args
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Callback, error) {
	cb, err := scanCallback(r.pool.QueryRow(ctx, selectCallback+" WHERE c.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Callback{}, ErrNotFound
	}
	return cb, err
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO callbacks (lead_id, scheduled_date, scheduled_time, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, params.LeadID, params.ScheduledDate, params.ScheduledTime, params.Notes).Scan(&id)
	if db.IsForeignKeyViolation(err) {
		return uuid.Nil, fmt.Errorf("lead %s: %w", params.LeadID, ErrNotFound)
	}
	return id, err
}

// Update applies params. Moving the date clears reminded_at so the new slot
// gets its own reminder; completing stamps completed_at and reopening clears it.
func (r *Repository) Update(ctx context.Context, params UpdateParams) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE callbacks SET
			scheduled_date = COALESCE($2, scheduled_date),
			scheduled_time = CASE WHEN $3 THEN $4 ELSE scheduled_time END,
			notes = COALESCE($5, notes),
			completed = COALESCE($6, completed),
			completed_at = CASE
				WHEN $6::boolean IS NULL THEN completed_at
				WHEN $6 AND NOT completed THEN now()
				WHEN $6 THEN completed_at
				ELSE NULL
			END,
			reminded_at = CASE WHEN $2::date IS DISTINCT FROM scheduled_date AND $2 IS NOT NULL THEN NULL ELSE reminded_at END,
			updated_at = now()
		WHERE id = $1
	`, params.ID, params.ScheduledDate, params.SetTime, params.ScheduledTime, params.Notes, params.Completed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM callbacks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetReminder loads a callback with its assigned agent's contact details.
func (r *Repository) GetReminder(ctx context.Context, id uuid.UUID) (Reminder, error) {
	var rem Reminder
	row := r.pool.QueryRow(ctx, `
		SELECT c.id, c.lead_id, c.scheduled_date, c.scheduled_time, c.notes, c.completed,
			c.completed_at, c.reminded_at, c.created_at, c.updated_at,
			l.name, l.phone, l.email, l.assigned_to_id,
			u.name, u.email
		FROM callbacks c
		JOIN leads l ON l.id = c.lead_id
		LEFT JOIN users u ON u.id = l.assigned_to_id
		WHERE c.id = $1`, id)
	cb, err := scanCallback(row, &rem.AgentName, &rem.AgentEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return Reminder{}, ErrNotFound
	}
	if err != nil {
		return Reminder{}, err
	}
	rem.Callback = cb
	return rem, nil
}

// MarkReminded stamps reminded_at once. It reports false when another worker
// got there first or the callback was completed meanwhile.
func (r *Repository) MarkReminded(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE callbacks SET reminded_at = now()
		WHERE id = $1 AND reminded_at IS NULL AND NOT completed
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
