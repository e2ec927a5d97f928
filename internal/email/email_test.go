package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type smtpConfig struct{ enabled bool }

func (c smtpConfig) GetSMTPHost() string         { return "smtp.example.com" }
func (c smtpConfig) GetSMTPPort() int            { return 587 }
func (c smtpConfig) GetSMTPUsername() string     { return "user" }
func (c smtpConfig) GetSMTPPassword() string     { return "pass" }
func (c smtpConfig) GetEmailFromName() string    { return "Leads Portal" }
func (c smtpConfig) GetEmailFromAddress() string { return "noreply@example.com" }
func (c smtpConfig) IsSMTPEnabled() bool         { return c.enabled }

func TestRenderCallbackReminder(t *testing.T) {
	body, err := renderCallbackReminder(CallbackReminder{
		AgentName:     "Sam",
		LeadName:      "Jane <Doe>",
		LeadPhone:     "+16502530000",
		ScheduledDate: "2025-06-01",
		ScheduledTime: "14:30",
	})
	require.NoError(t, err)

	assert.Contains(t, body.HTML, "Hi Sam,")
	assert.Contains(t, body.HTML, "Jane &lt;Doe&gt;")
	assert.Contains(t, body.HTML, "2025-06-01 at 14:30")
	assert.NotContains(t, body.HTML, "Notes")

	assert.Contains(t, body.Text, "callback scheduled with Jane <Doe>.")
	assert.Contains(t, body.Text, "When:  2025-06-01 at 14:30")
	assert.NotContains(t, body.Text, "Email:")
}

func TestRenderCallbackReminderWithNotes(t *testing.T) {
	body, err := renderCallbackReminder(CallbackReminder{
		AgentName:     "Sam",
		LeadName:      "Jane",
		LeadEmail:     "jane@example.com",
		ScheduledDate: "2025-06-01",
		Notes:         "Prefers mornings",
	})
	require.NoError(t, err)

	assert.Contains(t, body.Text, "Email: jane@example.com\nNotes: Prefers mornings")
	assert.NotContains(t, body.Text, " at ")
	assert.Contains(t, body.HTML, "Prefers mornings")
}

func TestNewSender(t *testing.T) {
	assert.IsType(t, NoopSender{}, NewSender(smtpConfig{}))
	assert.IsType(t, &SMTPSender{}, NewSender(smtpConfig{enabled: true}))
	assert.NoError(t, NoopSender{}.SendCallbackReminder(context.Background(), "a@example.com", CallbackReminder{}))
}
