// Package repository stores agent accounts in the users table.
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

var (
	ErrNotFound   = errors.New("agent not found")
	ErrEmailTaken = errors.New("email already exists")
)

const roleAgent = "AGENT"

// Agent is a user with the AGENT role. ActiveLeads counts the non-archived
// leads assigned to it.
type Agent struct {
	ID          uuid.UUID
	Email       string
	Name        string
	Role        string
	ActiveLeads int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateParams struct {
	Email        string
	Name         string
	PasswordHash string
}

// UpdateParams changes only the non-nil fields.
type UpdateParams struct {
	ID           uuid.UUID
	Email        *string
	Name         *string
	PasswordHash *string
}

type Repository struct {
	pool db.Pool
}

func New(pool db.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectAgent = `
	SELECT u.id, u.email, u.name, u.role,
		(SELECT count(*) FROM leads l WHERE l.assigned_to_id = u.id AND NOT l.is_archived)::int,
		u.created_at, u.updated_at
	FROM users u
	WHERE u.role = 'AGENT'`

func scanAgent(row pgx.Row) (Agent, error) {
	var a Agent
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.ActiveLeads, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrNotFound
	}
	return a, err
}

func (r *Repository) List(ctx context.Context) ([]Agent, error) {
	rows, err := r.pool.Query(ctx, selectAgent+` ORDER BY u.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Agent, error) {
	return scanAgent(r.pool.QueryRow(ctx, selectAgent+` AND u.id = $1`, id))
}

// EmailInUse reports whether any user other than exclude owns email.
func (r *Repository) EmailInUse(ctx context.Context, email string, exclude *uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1) AND ($2::uuid IS NULL OR id <> $2))
	`, email, exclude).Scan(&exists)
	return exists, err
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Agent, error) {
	var a Agent
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, name, role, created_at, updated_at
	`, params.Email, params.PasswordHash, params.Name, roleAgent).
		Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return Agent{}, ErrEmailTaken
	}
	if err != nil {
		return Agent{}, fmt.Errorf("create agent: %w", err)
	}
	return a, nil
}

func (r *Repository) Update(ctx context.Context, params UpdateParams) (Agent, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = COALESCE($2, email),
			name = COALESCE($3, name),
			password_hash = COALESCE($4, password_hash),
			updated_at = now()
		WHERE id = $1 AND role = 'AGENT'
	`, params.ID, params.Email, params.Name, params.PasswordHash)
	if db.IsUniqueViolation(err) {
		return Agent{}, ErrEmailTaken
	}
	if err != nil {
		return Agent{}, fmt.Errorf("update agent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Agent{}, ErrNotFound
	}
	return r.GetByID(ctx, params.ID)
}

// Delete unassigns the agent's leads and removes the account in one
// transaction. It returns how many leads were unassigned.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	unassigned, err := tx.Exec(ctx, `
		UPDATE leads SET assigned_to_id = NULL, updated_at = now()
		WHERE assigned_to_id = $1
	`, id)
	if err != nil {
		return 0, fmt.Errorf("unassign leads: %w", err)
	}

	deleted, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1 AND role = 'AGENT'`, id)
	if err != nil {
		return 0, fmt.Errorf("delete agent: %w", err)
	}
	if deleted.RowsAffected() == 0 {
		return 0, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return unassigned.RowsAffected(), nil
}
