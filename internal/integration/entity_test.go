package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		s       Settings
		wantErr bool
	}{
		{"slack ok", KindSlack, Settings{Slack: &SlackSettings{WebhookURL: "https://hooks.slack.com/services/x"}}, false},
		{"slack http", KindSlack, Settings{Slack: &SlackSettings{WebhookURL: "http://hooks.slack.com/x"}}, true},
		{"slack missing", KindSlack, Settings{}, true},
		{"email ok", KindEmail, Settings{Email: &EmailSettings{SMTPServer: "smtp.example.com", Port: 587, Email: "team@example.com"}}, false},
		{"email bad port", KindEmail, Settings{Email: &EmailSettings{SMTPServer: "smtp.example.com", Port: 0, Email: "team@example.com"}}, true},
		{"email bad address", KindEmail, Settings{Email: &EmailSettings{SMTPServer: "smtp.example.com", Port: 25, Email: "team"}}, true},
		{"calendar ok", KindGoogleCalendar, Settings{GoogleCalendar: &GoogleCalendarSettings{APIKey: "k"}}, false},
		{"calendar blank key", KindGoogleCalendar, Settings{GoogleCalendar: &GoogleCalendarSettings{APIKey: " "}}, true},
		{"webhook http ok", KindWebhook, Settings{Webhook: &WebhookSettings{URL: "http://ci.internal/hook"}}, false},
		{"webhook relative", KindWebhook, Settings{Webhook: &WebhookSettings{URL: "/hook"}}, true},
		{"wrong kind settings", KindWebhook, Settings{Slack: &SlackSettings{WebhookURL: "https://x"}}, true},
		{"two kinds", KindSlack, Settings{Slack: &SlackSettings{WebhookURL: "https://x"}, GoogleCalendar: &GoogleCalendarSettings{APIKey: "k"}}, true},
		{"unknown kind", Kind("teams"), Settings{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate(tt.kind)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
