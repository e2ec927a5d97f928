// Package email renders and delivers the transactional mail the system sends.
package email

import (
	"context"

	"github.com/mehdirazajaffri/leads-management-system/platform/config"
)

// CallbackReminder is the content of a reminder sent to the lead's agent.
type CallbackReminder struct {
	AgentName     string
	LeadName      string
	LeadPhone     string
	LeadEmail     string
	ScheduledDate string
	ScheduledTime string
	Notes         string
}

type Sender interface {
	SendCallbackReminder(ctx context.Context, toEmail string, reminder CallbackReminder) error
}

// NoopSender drops every message. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendCallbackReminder(context.Context, string, CallbackReminder) error {
	return nil
}

// NewSender returns an SMTP sender when SMTP is configured, NoopSender otherwise.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.IsSMTPEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}
