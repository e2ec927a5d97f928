package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mehdirazajaffri/leads-management-system/internal/leads/domain"
)

// maxListRows bounds the row set handed to the table engine.
const maxListRows = 10000

const leadDetailSelect = `
	SELECT l.id, l.name, l.phone, l.email, l.source_platform, l.campaign_name,
		l.current_status_id, l.assigned_to_id, l.is_archived, l.created_at, l.updated_at, l.last_contacted_at,
		s.name, s.is_final, u.name, u.email
	FROM leads l
	JOIN statuses s ON s.id = l.current_status_id
	LEFT JOIN users u ON u.id = l.assigned_to_id`

const findDuplicateQuery = `
	SELECT id,
		CASE WHEN regexp_replace(phone, '\D', '', 'g') = $1 THEN 'phone' ELSE 'email' END
	FROM leads
	WHERE regexp_replace(phone, '\D', '', 'g') = $1 OR ($2 <> '' AND email = $2)
	ORDER BY created_at
	LIMIT 1`

const bulkUpdateQuery = `
	UPDATE leads SET
		current_status_id = COALESCE($2::uuid, current_status_id),
		assigned_to_id = CASE WHEN $3::boolean THEN $4::uuid ELSE assigned_to_id END,
		is_archived = COALESCE($5::boolean, is_archived),
		updated_at = now()
	WHERE id = ANY($1)`

// bulkSetStatusQuery runs as one statement so the guard, the update and the
// audit rows commit together. Leads on a final status only accept a final
// target; the rest are left untouched and not counted.
const bulkSetStatusQuery = `
	WITH target AS (
		SELECT id, is_final FROM statuses WHERE id = $2
	),
	eligible AS (
		SELECT l.id, l.current_status_id AS old_status_id
		FROM leads l
		JOIN statuses cur ON cur.id = l.current_status_id
		CROSS JOIN target t
		WHERE l.id = ANY($1) AND (NOT cur.is_final OR t.is_final)
		FOR UPDATE OF l
	),
	moved AS (
		UPDATE leads l SET
			current_status_id = $2,
			last_contacted_at = CASE WHEN l.current_status_id <> $2 THEN now() ELSE l.last_contacted_at END,
			assigned_to_id = CASE WHEN $3::boolean THEN $4::uuid ELSE l.assigned_to_id END,
			is_archived = COALESCE($5::boolean, l.is_archived),
			updated_at = now()
		FROM eligible e
		WHERE l.id = e.id
		RETURNING l.id, e.old_status_id
	),
	logged AS (
		INSERT INTO activity_logs (lead_id, agent_id, old_status_id, new_status_id, is_private)
		SELECT id, $6, old_status_id, $2, false FROM moved WHERE old_status_id <> $2
		RETURNING id
	)
	SELECT (SELECT count(*) FROM moved), (SELECT count(*) FROM logged)`

func scanLeadDetail(row pgx.Row) (LeadDetail, error) {
	var d LeadDetail
	err := row.Scan(
		&d.ID, &d.Name, &d.Phone, &d.Email, &d.SourcePlatform, &d.CampaignName,
		&d.CurrentStatusID, &d.AssignedToID, &d.IsArchived, &d.CreatedAt, &d.UpdatedAt, &d.LastContactedAt,
		&d.Status.Name, &d.Status.IsFinal, &d.AgentName, &d.AgentEmail,
	)
	d.Status.ID = d.CurrentStatusID
	return d, err
}

func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (LeadDetail, error) {
	d, err := scanLeadDetail(r.pool.QueryRow(ctx, leadDetailSelect+` WHERE l.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadDetail{}, ErrNotFound
	}
	if err != nil {
		return LeadDetail{}, err
	}
	return d, nil
}

// List returns leads matching params, newest first.
func (r *Repository) List(ctx context.Context, params ListParams) ([]LeadDetail, error) {
	query, args := buildListQuery(params)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]LeadDetail, 0)
	for rows.Next() {
		d, err := scanLeadDetail(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

func buildListQuery(params ListParams) (string, []any) {
	where := []string{"l.is_archived = $1"}
	args := []any{params.IsArchived}

	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if params.AgentID != nil {
		add("l.assigned_to_id = $%d", *params.AgentID)
	}
	if params.StatusID != nil {
		add("l.current_status_id = $%d", *params.StatusID)
	}
	if params.SourcePlatform != "" {
		add("l.source_platform = $%d", params.SourcePlatform)
	}
	if params.CampaignName != "" {
		add("l.campaign_name = $%d", params.CampaignName)
	}
	if params.StartDate != nil {
		add("l.created_at >= $%d", *params.StartDate)
	}
	if params.EndDate != nil {
		add("l.created_at <= $%d", *params.EndDate)
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(l.name ILIKE $%d OR l.email ILIKE $%d OR l.phone ILIKE $%d)", n, n, n))
	}

	query := leadDetailSelect + "\n\tWHERE " + strings.Join(where, " AND ") +
		fmt.Sprintf("\n\tORDER BY l.created_at DESC\n\tLIMIT %d", maxListRows)
	return query, args
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, phone, email, source_platform, campaign_name, current_status_id, assigned_to_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, phone, email, source_platform, campaign_name, current_status_id, assigned_to_id,
			is_archived, created_at, updated_at, last_contacted_at
	`,
		params.Name, params.Phone, params.Email, params.SourcePlatform, params.CampaignName,
		params.CurrentStatusID, params.AssignedToID,
	).Scan(
		&lead.ID, &lead.Name, &lead.Phone, &lead.Email, &lead.SourcePlatform, &lead.CampaignName,
		&lead.CurrentStatusID, &lead.AssignedToID, &lead.IsArchived, &lead.CreatedAt, &lead.UpdatedAt, &lead.LastContactedAt,
	)
	return lead, err
}

// FindDuplicate returns the oldest lead sharing the phone digits or the
// (lower-cased, non-empty) email. ErrNotFound when there is none.
func (r *Repository) FindDuplicate(ctx context.Context, phoneDigits, email string) (Duplicate, error) {
	var dup Duplicate
	err := r.pool.QueryRow(ctx, findDuplicateQuery, phoneDigits, email).Scan(&dup.LeadID, &dup.Reason)
	if errors.Is(err, pgx.ErrNoRows) {
		return Duplicate{}, ErrNotFound
	}
	return dup, err
}

// BulkUpdate applies params to every lead in ids and returns how many rows changed.
func (r *Repository) BulkUpdate(ctx context.Context, ids []uuid.UUID, params BulkUpdateParams) (int64, error) {
	tag, err := r.pool.Exec(ctx, bulkUpdateQuery, ids, params.StatusID, params.SetAssignee, params.AssignedToID, params.IsArchived)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// BulkSetStatus moves every eligible lead in ids to params.StatusID, applies
// the other fields of params to the same rows, and logs each real change
// with actorID as the acting user.
func (r *Repository) BulkSetStatus(ctx context.Context, ids []uuid.UUID, actorID uuid.UUID, params BulkUpdateParams) (BulkStatusOutcome, error) {
	var out BulkStatusOutcome
	err := r.pool.QueryRow(ctx, bulkSetStatusQuery,
		ids, params.StatusID, params.SetAssignee, params.AssignedToID, params.IsArchived, actorID,
	).Scan(&out.Updated, &out.Logged)
	return out, err
}

// ListOpenCallbacks returns the lead's open callbacks by date.
func (r *Repository) ListOpenCallbacks(ctx context.Context, leadID uuid.UUID) ([]Callback, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, scheduled_date, scheduled_time, notes, completed, completed_at, created_at
		FROM callbacks
		WHERE lead_id = $1 AND NOT completed
		ORDER BY scheduled_date ASC, scheduled_time ASC NULLS FIRST
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Callback, 0)
	for rows.Next() {
		var cb Callback
		if err := rows.Scan(&cb.ID, &cb.LeadID, &cb.ScheduledDate, &cb.ScheduledTime, &cb.Notes, &cb.Completed, &cb.CompletedAt, &cb.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, cb)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

func (r *Repository) GetStatus(ctx context.Context, id uuid.UUID) (domain.Status, error) {
	var s domain.Status
	err := r.pool.QueryRow(ctx, `SELECT id, name, is_final FROM statuses WHERE id = $1`, id).Scan(&s.ID, &s.Name, &s.IsFinal)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Status{}, ErrStatusNotFound
	}
	return s, err
}

func (r *Repository) ListStatuses(ctx context.Context) ([]domain.Status, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, is_final FROM statuses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Status, 0)
	for rows.Next() {
		var s domain.Status
		if err := rows.Scan(&s.ID, &s.Name, &s.IsFinal); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// IsAgent reports whether id is a user with the AGENT role.
func (r *Repository) IsAgent(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND role = 'AGENT')`, id).Scan(&ok)
	return ok, err
}

// InsertActivity appends an activity log row.
func (r *Repository) InsertActivity(ctx context.Context, params ActivityParams) (ActivityLog, error) {
	log := ActivityLog{
		LeadID:      params.LeadID,
		AgentID:     &params.AgentID,
		OldStatusID: params.OldStatusID,
		NewStatusID: params.NewStatusID,
		Note:        params.Note,
		IsPrivate:   params.IsPrivate,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO activity_logs (lead_id, agent_id, old_status_id, new_status_id, note, is_private)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, params.LeadID, params.AgentID, params.OldStatusID, params.NewStatusID, params.Note, params.IsPrivate,
	).Scan(&log.ID, &log.CreatedAt)
	return log, err
}
