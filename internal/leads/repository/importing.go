package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ExistingMatch is a stored lead that shares a phone or an email with an
// imported row.
type ExistingMatch struct {
	LeadID      uuid.UUID
	PhoneDigits string
	Email       string
}

const matchExistingQuery = `
	SELECT id, regexp_replace(phone, '\D', '', 'g'), email
	FROM leads
	WHERE regexp_replace(phone, '\D', '', 'g') = ANY($1)
		OR (email <> '' AND email = ANY($2))
	ORDER BY created_at`

const insertImportedLeadQuery = `
	INSERT INTO leads (name, phone, email, source_platform, campaign_name, current_status_id)
	VALUES ($1, $2, $3, $4, $5, $6)`

const updateImportedLeadQuery = `
	UPDATE leads
	SET name = $2, phone = $3, email = $4, source_platform = $5, campaign_name = $6, updated_at = now()
	WHERE id = $1`

// MatchExisting returns every stored lead whose phone digits or email appear
// in the given sets, oldest first.
func (r *Repository) MatchExisting(ctx context.Context, phoneDigits, emails []string) ([]ExistingMatch, error) {
	rows, err := r.pool.Query(ctx, matchExistingQuery, phoneDigits, emails)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ExistingMatch, 0)
	for rows.Next() {
		var m ExistingMatch
		if err := rows.Scan(&m.LeadID, &m.PhoneDigits, &m.Email); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// InsertMany inserts leads in one round trip.
func (r *Repository) InsertMany(ctx context.Context, leads []CreateLeadParams) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, l := range leads {
		batch.Queue(insertImportedLeadQuery, l.Name, l.Phone, l.Email, l.SourcePlatform, l.CampaignName, l.CurrentStatusID)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range leads {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	return len(leads), results.Close()
}

// UpdateContact overwrites the contact and attribution fields of an existing
// lead. Status and assignment are kept.
func (r *Repository) UpdateContact(ctx context.Context, id uuid.UUID, params CreateLeadParams) error {
	_, err := r.pool.Exec(ctx, updateImportedLeadQuery,
		id, params.Name, params.Phone, params.Email, params.SourcePlatform, params.CampaignName)
	return err
}
