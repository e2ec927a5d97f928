package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/db"
)

const (
	statusNotFoundMessage = "Status not found"
	nameTakenMessage      = "Status name already exists"
	statusInUseMessage    = "Cannot delete status that is in use"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool db.Querier
}

// New creates a new statuses repository.
func New(pool db.Querier) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const selectStatus = `
	SELECT s.id, s.name, s.is_final,
		(SELECT count(*) FROM leads l WHERE l.current_status_id = s.id)::int AS lead_count,
		s.created_at, s.updated_at
	FROM statuses s`

func scanStatus(row pgx.Row) (Status, error) {
	var st Status
	err := row.Scan(&st.ID, &st.Name, &st.IsFinal, &st.LeadCount, &st.CreatedAt, &st.UpdatedAt)
	return st, err
}

// GetByID retrieves a status by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Status, error) {
	st, err := scanStatus(r.pool.QueryRow(ctx, selectStatus+` WHERE s.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Status{}, apperr.NotFound(statusNotFoundMessage)
	}
	if err != nil {
		return Status{}, fmt.Errorf("get status by id: %w", err)
	}
	return st, nil
}

// List retrieves all statuses ordered by name.
func (r *Repo) List(ctx context.Context) ([]Status, error) {
	rows, err := r.pool.Query(ctx, selectStatus+` ORDER BY s.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	defer rows.Close()

	var items []Status
	for rows.Next() {
		st, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		items = append(items, st)
	}
	return items, rows.Err()
}

// Create inserts a status. Names are unique.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Status, error) {
	var st Status
	err := r.pool.QueryRow(ctx, `
		INSERT INTO statuses (name, is_final)
		VALUES ($1, $2)
		RETURNING id, name, is_final, created_at, updated_at
	`, params.Name, params.IsFinal).Scan(&st.ID, &st.Name, &st.IsFinal, &st.CreatedAt, &st.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return Status{}, apperr.Conflict(nameTakenMessage)
	}
	if err != nil {
		return Status{}, fmt.Errorf("create status: %w", err)
	}
	return st, nil
}

// Update changes the name and/or finality of a status.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Status, error) {
	var st Status
	err := r.pool.QueryRow(ctx, `
		UPDATE statuses
		SET name = COALESCE($2, name),
			is_final = COALESCE($3, is_final),
			updated_at = now()
		WHERE id = $1
		RETURNING id, name, is_final, created_at, updated_at
	`, params.ID, params.Name, params.IsFinal).Scan(&st.ID, &st.Name, &st.IsFinal, &st.CreatedAt, &st.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return Status{}, apperr.NotFound(statusNotFoundMessage)
	case db.IsUniqueViolation(err):
		return Status{}, apperr.Conflict(nameTakenMessage)
	case err != nil:
		return Status{}, fmt.Errorf("update status: %w", err)
	}
	return st, nil
}

// Delete removes a status that no lead currently sits in.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM statuses WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return apperr.Validation(statusInUseMessage)
	}
	if err != nil {
		return fmt.Errorf("delete status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(statusNotFoundMessage)
	}
	return nil
}
