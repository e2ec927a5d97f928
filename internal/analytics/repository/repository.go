// Package repository aggregates lead and activity data for the admin dashboard.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/platform/db"
)

// ConvertedStatus is the status name counted as a conversion.
const ConvertedStatus = "Converted"

// Scope narrows the leads being aggregated. Archived leads are never counted.
type Scope struct {
	Since    *time.Time
	Campaign string
}

type Totals struct {
	Leads     int
	Converted int
}

type AgentStats struct {
	AgentID   uuid.UUID
	AgentName string
	Assigned  int
	Converted int
}

type SourceCount struct {
	SourcePlatform string
	Total          int
}

type TrendPoint struct {
	Bucket    time.Time
	Total     int
	Converted int
}

type Repository struct {
	pool db.Querier
}

func New(pool db.Querier) *Repository {
	return &Repository{pool: pool}
}

// leadScope renders the lead filter for alias l. Placeholders start at $first.
func leadScope(s Scope, first int) (string, []any) {
	clauses := []string{"NOT l.is_archived"}
	var args []any
	if s.Since != nil {
		args = append(args, *s.Since)
		clauses = append(clauses, fmt.Sprintf("l.created_at >= $%d", first+len(args)-1))
	}
	if s.Campaign != "" {
		args = append(args, s.Campaign)
		clauses = append(clauses, fmt.Sprintf("l.campaign_name = $%d", first+len(args)-1))
	}
	return strings.Join(clauses, " AND "), args
}

func (r *Repository) Totals(ctx context.Context, s Scope) (Totals, error) {
	where, args := leadScope(s, 2)
	var t Totals
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)::int, (count(*) FILTER (WHERE st.name = $1))::int
		FROM leads l
		JOIN statuses st ON st.id = l.current_status_id
		WHERE `+where, append([]any{ConvertedStatus}, args...)...).Scan(&t.Leads, &t.Converted)
	return t, err
}

func (r *Repository) CountAgents(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*)::int FROM users WHERE role = 'AGENT'`).Scan(&n)
	return n, err
}

// Campaigns lists the distinct non-empty campaign names of active leads.
func (r *Repository) Campaigns(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT campaign_name FROM leads
		WHERE NOT is_archived AND campaign_name <> ''
		ORDER BY campaign_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// AgentStats returns assignment and conversion counts for every agent that
// holds at least one lead in scope, ordered by name.
func (r *Repository) AgentStats(ctx context.Context, s Scope) ([]AgentStats, error) {
	where, args := leadScope(s, 2)
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name, count(*)::int, (count(*) FILTER (WHERE st.name = $1))::int
		FROM leads l
		JOIN users u ON u.id = l.assigned_to_id AND u.role = 'AGENT'
		JOIN statuses st ON st.id = l.current_status_id
		WHERE `+where+`
		GROUP BY u.id, u.name
		ORDER BY u.name`, append([]any{ConvertedStatus}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AgentStats, 0)
	for rows.Next() {
		var a AgentStats
		if err := rows.Scan(&a.AgentID, &a.AgentName, &a.Assigned, &a.Converted); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ProcessedSince counts, per agent, the distinct leads the agent touched
// since the given instant. Only the campaign part of the scope applies.
func (r *Repository) ProcessedSince(ctx context.Context, since time.Time, campaign string) (map[uuid.UUID]int, error) {
	where, args := leadScope(Scope{Campaign: campaign}, 2)
	rows, err := r.pool.Query(ctx, `
		SELECT a.agent_id, count(DISTINCT a.lead_id)::int
		FROM activity_logs a
		JOIN leads l ON l.id = a.lead_id
		WHERE a.agent_id IS NOT NULL AND a.created_at >= $1 AND `+where+`
		GROUP BY a.agent_id`, append([]any{since}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

// LeadsBySource counts leads per source platform, largest first.
func (r *Repository) LeadsBySource(ctx context.Context, s Scope) ([]SourceCount, error) {
	where, args := leadScope(s, 1)
	rows, err := r.pool.Query(ctx, `
		SELECT l.source_platform, count(*)::int
		FROM leads l
		WHERE `+where+`
		GROUP BY l.source_platform
		ORDER BY 2 DESC, 1`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SourceCount, 0)
	for rows.Next() {
		var c SourceCount
		if err := rows.Scan(&c.SourcePlatform, &c.Total); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Trend buckets lead creation by unit ("day", "week" or "month").
func (r *Repository) Trend(ctx context.Context, unit string, since time.Time) ([]TrendPoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc($1, l.created_at) AS bucket,
			count(*)::int,
			(count(*) FILTER (WHERE st.name = $2))::int
		FROM leads l
		JOIN statuses st ON st.id = l.current_status_id
		WHERE NOT l.is_archived AND l.created_at >= $3
		GROUP BY bucket
		ORDER BY bucket`, unit, ConvertedStatus, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TrendPoint, 0)
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Bucket, &p.Total, &p.Converted); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
