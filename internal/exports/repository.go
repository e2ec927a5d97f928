package exports

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mehdirazajaffri/leads-management-system/platform/db"
)

var ErrAPIKeyNotFound = errors.New("export API key not found")

const apiKeyPrefix = "lms_"

// APIKey represents an export API key stored in the database.
type APIKey struct {
	ID         uuid.UUID
	Name       string
	KeyHash    string
	KeyPrefix  string
	IsActive   bool
	CreatedBy  *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastUsedAt *time.Time
}

// Repository provides data access for export operations.
type Repository struct {
	pool db.Querier
}

func NewRepository(pool db.Querier) *Repository {
	return &Repository{pool: pool}
}

// GenerateAPIKey creates a new random API key and returns the plaintext key and its hash.
func GenerateAPIKey() (plaintext string, hash string, prefix string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", "", err
	}
	plaintext = apiKeyPrefix + hex.EncodeToString(bytes)
	prefix = plaintext[:12]
	return plaintext, HashKey(plaintext), prefix, nil
}

// HashKey hashes a plaintext API key for lookup.
func HashKey(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}

const apiKeyColumns = `id, name, key_hash, key_prefix, is_active, created_by, created_at, updated_at, last_used_at`

func scanAPIKey(row pgx.Row) (APIKey, error) {
	var key APIKey
	err := row.Scan(&key.ID, &key.Name, &key.KeyHash, &key.KeyPrefix, &key.IsActive, &key.CreatedBy, &key.CreatedAt, &key.UpdatedAt, &key.LastUsedAt)
	return key, err
}

func (r *Repository) CreateAPIKey(ctx context.Context, name, keyHash, keyPrefix string, createdBy *uuid.UUID) (APIKey, error) {
	return scanAPIKey(r.pool.QueryRow(ctx, `
		INSERT INTO export_api_keys (name, key_hash, key_prefix, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING `+apiKeyColumns, name, keyHash, keyPrefix, createdBy))
}

// GetAPIKeyByHash retrieves an active API key by its hash.
func (r *Repository) GetAPIKeyByHash(ctx context.Context, keyHash string) (APIKey, error) {
	key, err := scanAPIKey(r.pool.QueryRow(ctx, `
		SELECT `+apiKeyColumns+`
		FROM export_api_keys
		WHERE key_hash = $1 AND is_active
	`, keyHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return APIKey{}, ErrAPIKeyNotFound
	}
	return key, err
}

func (r *Repository) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apiKeyColumns+`
		FROM export_api_keys
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]APIKey, 0)
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// RevokeAPIKey deactivates an export API key.
func (r *Repository) RevokeAPIKey(ctx context.Context, keyID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE export_api_keys SET is_active = false, updated_at = now()
		WHERE id = $1 AND is_active
	`, keyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

// TouchAPIKey updates the last_used_at timestamp for the key.
func (r *Repository) TouchAPIKey(ctx context.Context, keyID uuid.UUID) {
	_, _ = r.pool.Exec(ctx, `
		UPDATE export_api_keys SET last_used_at = now(), updated_at = now()
		WHERE id = $1
	`, keyID)
}

// History is the flattened activity and callback trail of one lead.
type History struct {
	Activity  []string
	Callbacks []string
}

// LeadHistory returns the public activity and every callback of the given
// leads, oldest first, rendered as single-line entries.
func (r *Repository) LeadHistory(ctx context.Context, leadIDs []uuid.UUID) (map[uuid.UUID]*History, error) {
	out := make(map[uuid.UUID]*History, len(leadIDs))
	if len(leadIDs) == 0 {
		return out, nil
	}
	entry := func(id uuid.UUID) *History {
		h, ok := out[id]
		if !ok {
			h = &History{}
			out[id] = h
		}
		return h
	}

	rows, err := r.pool.Query(ctx, `
		SELECT a.lead_id, a.created_at, u.name, os.name, ns.name, a.note
		FROM activity_logs a
		LEFT JOIN users u ON u.id = a.agent_id
		LEFT JOIN statuses os ON os.id = a.old_status_id
		LEFT JOIN statuses ns ON ns.id = a.new_status_id
		WHERE a.lead_id = ANY($1) AND NOT a.is_private
		ORDER BY a.created_at ASC
	`, leadIDs)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			leadID             uuid.UUID
			at                 time.Time
			agent, from, to, n *string
		)
		if err := rows.Scan(&leadID, &at, &agent, &from, &to, &n); err != nil {
			rows.Close()
			return nil, err
		}
		h := entry(leadID)
		h.Activity = append(h.Activity, formatActivity(at, agent, from, to, n))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT lead_id, scheduled_date, scheduled_time, completed, notes
		FROM callbacks
		WHERE lead_id = ANY($1)
		ORDER BY scheduled_date ASC, scheduled_time ASC NULLS FIRST
	`, leadIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			leadID    uuid.UUID
			date      time.Time
			tod       *string
			completed bool
			notes     *string
		)
		if err := rows.Scan(&leadID, &date, &tod, &completed, &notes); err != nil {
			return nil, err
		}
		h := entry(leadID)
		h.Callbacks = append(h.Callbacks, formatCallback(date, tod, completed, notes))
	}
	return out, rows.Err()
}

func formatActivity(at time.Time, agent, from, to, note *string) string {
	var b strings.Builder
	b.WriteString(at.UTC().Format("2006-01-02 15:04"))
	if agent != nil {
		b.WriteString(" " + *agent)
	}
	if to != nil {
		if from != nil {
			fmt.Fprintf(&b, ": %s -> %s", *from, *to)
		} else {
			fmt.Fprintf(&b, ": %s", *to)
		}
	}
	if note != nil && *note != "" {
		fmt.Fprintf(&b, " (%s)", flatten(*note))
	}
	return b.String()
}

func formatCallback(date time.Time, tod *string, completed bool, notes *string) string {
	s := date.Format("2006-01-02")
	if tod != nil {
		s += " " + *tod
	}
	if completed {
		s += " [done]"
	} else {
		s += " [open]"
	}
	if notes != nil && *notes != "" {
		s += " " + flatten(*notes)
	}
	return s
}

// flatten keeps a history entry on one line and free of the " | " separator.
func flatten(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "|", "/")), " ")
}
