package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mehdirazajaffri/leads-management-system/internal/leads/domain"
)

// LeadState is the slice of a lead a status transition needs to decide.
type LeadState struct {
	LeadID       uuid.UUID
	Status       domain.Status
	AssignedToID *uuid.UUID
	IsArchived   bool
}

const leadStateQuery = `
	SELECT l.id, s.id, s.name, s.is_final, l.assigned_to_id, l.is_archived
	FROM leads l
	JOIN statuses s ON s.id = l.current_status_id
	WHERE l.id = $1`

const openCallbackExistsQuery = `
	SELECT EXISTS (
		SELECT 1 FROM callbacks
		WHERE lead_id = $1 AND scheduled_date = $2
			AND scheduled_time IS NOT DISTINCT FROM $3
			AND NOT completed
	)`

// GetLeadState loads the lead with its current status. No row lock is taken.
func (r *Repository) GetLeadState(ctx context.Context, leadID uuid.UUID) (LeadState, error) {
	var st LeadState
	err := r.pool.QueryRow(ctx, leadStateQuery, leadID).Scan(
		&st.LeadID, &st.Status.ID, &st.Status.Name, &st.Status.IsFinal, &st.AssignedToID, &st.IsArchived,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadState{}, ErrNotFound
	}
	return st, err
}

// SetLocalTimeouts bounds lock waits and statement runtime for the rest of
// the current transaction. Values are whole milliseconds.
func (r *Repository) SetLocalTimeouts(ctx context.Context, lockWait, statement time.Duration) error {
	if _, err := r.pool.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", lockWait.Milliseconds())); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", statement.Milliseconds()))
	return err
}

// SetStatus moves a non-archived lead to statusID and stamps last_contacted_at.
// Returns ErrNotFound when no row matched.
func (r *Repository) SetStatus(ctx context.Context, leadID, statusID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET current_status_id = $2, last_contacted_at = now(), updated_at = now()
		WHERE id = $1 AND NOT is_archived
	`, leadID, statusID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// OpenCallbackExists reports whether the lead already has an open callback at
// exactly this date and time of day.
func (r *Repository) OpenCallbackExists(ctx context.Context, leadID uuid.UUID, date time.Time, timeOfDay *string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, openCallbackExistsQuery, leadID, date, timeOfDay).Scan(&exists)
	return exists, err
}

func (r *Repository) InsertCallback(ctx context.Context, params CallbackParams) (Callback, error) {
	cb := Callback{
		LeadID:        params.LeadID,
		ScheduledDate: params.ScheduledDate,
		ScheduledTime: params.ScheduledTime,
		Notes:         params.Notes,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO callbacks (lead_id, scheduled_date, scheduled_time, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, params.LeadID, params.ScheduledDate, params.ScheduledTime, params.Notes).Scan(&cb.ID, &cb.CreatedAt)
	return cb, err
}
