// Package seed bootstraps a fresh database with the default statuses and an
// admin account. Every step is idempotent.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/mehdirazajaffri/leads-management-system/internal/auth/password"
	"github.com/mehdirazajaffri/leads-management-system/platform/config"
	"github.com/mehdirazajaffri/leads-management-system/platform/db"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
)

const (
	SampleAgentEmail    = "agent@example.com"
	SampleAgentPassword = "agent123"
)

// Status is a seeded pipeline status.
type Status struct {
	Name    string
	IsFinal bool
}

// DefaultStatuses is the stock pipeline.
var DefaultStatuses = []Status{
	{Name: "Need to Contact"},
	{Name: "Attempted Contact"},
	{Name: "Busy"},
	{Name: "Scheduled Callback"},
	{Name: "Junk Lead", IsFinal: true},
	{Name: "Converted", IsFinal: true},
	{Name: "Not Converted", IsFinal: true},
}

// Result counts what a run actually inserted.
type Result struct {
	Statuses int
	Users    int
}

// Run inserts the default statuses, the admin from cfg and, when asked, a
// sample agent. Existing rows are left untouched.
func Run(ctx context.Context, q db.Querier, cfg config.SeedConfig, log *logger.Logger) (Result, error) {
	var res Result

	for _, s := range DefaultStatuses {
		tag, err := q.Exec(ctx, `
			INSERT INTO statuses (name, is_final) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
		`, s.Name, s.IsFinal)
		if err != nil {
			return res, fmt.Errorf("seed status %q: %w", s.Name, err)
		}
		res.Statuses += int(tag.RowsAffected())
	}

	created, err := ensureUser(ctx, q, cfg.GetAdminEmail(), cfg.GetAdminPassword(), "Admin", "ADMIN")
	if err != nil {
		return res, err
	}
	if created {
		res.Users++
		log.Info("admin user created", "email", cfg.GetAdminEmail())
	}

	if cfg.GetCreateSampleAgent() {
		created, err := ensureUser(ctx, q, SampleAgentEmail, SampleAgentPassword, "Sample Agent", "AGENT")
		if err != nil {
			return res, err
		}
		if created {
			res.Users++
			log.Info("sample agent created", "email", SampleAgentEmail)
		}
	}

	return res, nil
}

func ensureUser(ctx context.Context, q db.Querier, email, plain, name, role string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plain == "" {
		return false, fmt.Errorf("seed %s user: email and password are required", strings.ToLower(role))
	}

	hash, err := password.Hash(plain)
	if err != nil {
		return false, err
	}

	tag, err := q.Exec(ctx, `
		INSERT INTO users (email, password_hash, name, role) VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
	`, email, hash, name, role)
	if err != nil {
		return false, fmt.Errorf("seed user %s: %w", email, err)
	}
	return tag.RowsAffected() == 1, nil
}
