package integration

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
)

type Kind string

const (
	KindSlack          Kind = "slack"
	KindEmail          Kind = "email"
	KindGoogleCalendar Kind = "google_calendar"
	KindWebhook        Kind = "webhook"
)

// Kinds lists every supported integration in display order.
var Kinds = []Kind{KindSlack, KindEmail, KindGoogleCalendar, KindWebhook}

func (k Kind) Valid() bool {
	switch k {
	case KindSlack, KindEmail, KindGoogleCalendar, KindWebhook:
		return true
	}
	return false
}

func (k Kind) DisplayName() string {
	switch k {
	case KindSlack:
		return "Slack"
	case KindEmail:
		return "Email"
	case KindGoogleCalendar:
		return "Google Calendar"
	case KindWebhook:
		return "Webhooks"
	}
	return string(k)
}

type SlackSettings struct {
	WebhookURL string `json:"webhook_url" yaml:"webhook_url"`
}

type EmailSettings struct {
	SMTPServer string `json:"smtp_server" yaml:"smtp_server"`
	Port       int    `json:"port" yaml:"port"`
	Email      string `json:"email" yaml:"email"`
}

type GoogleCalendarSettings struct {
	APIKey string `json:"api_key" yaml:"api_key"`
}

type WebhookSettings struct {
	URL string `json:"url" yaml:"url"`
	// Events restricts delivery to these event types; empty means all.
	Events []string `json:"events,omitempty" yaml:"events,omitempty"`
}

// Settings holds the configuration of exactly one kind.
type Settings struct {
	Slack          *SlackSettings          `json:"slack,omitempty" yaml:"slack,omitempty"`
	Email          *EmailSettings          `json:"email,omitempty" yaml:"email,omitempty"`
	GoogleCalendar *GoogleCalendarSettings `json:"google_calendar,omitempty" yaml:"google_calendar,omitempty"`
	Webhook        *WebhookSettings        `json:"webhook,omitempty" yaml:"webhook,omitempty"`
}

type Integration struct {
	Kind      Kind      `json:"kind" yaml:"kind"`
	Name      string    `json:"name" yaml:"name"`
	Enabled   bool      `json:"enabled" yaml:"enabled"`
	Settings  Settings  `json:"settings" yaml:"settings"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Validate checks that s carries valid settings for kind and nothing else.
func (s Settings) Validate(kind Kind) error {
	set := 0
	for _, present := range []bool{s.Slack != nil, s.Email != nil, s.GoogleCalendar != nil, s.Webhook != nil} {
		if present {
			set++
		}
	}
	if set > 1 {
		return errors.New("settings must configure a single integration")
	}

	switch kind {
	case KindSlack:
		if s.Slack == nil {
			return errors.New("slack settings are required")
		}
		return validateURL("webhook_url", s.Slack.WebhookURL, true)
	case KindEmail:
		if s.Email == nil {
			return errors.New("email settings are required")
		}
		if strings.TrimSpace(s.Email.SMTPServer) == "" {
			return errors.New("smtp_server is required")
		}
		if s.Email.Port < 1 || s.Email.Port > 65535 {
			return fmt.Errorf("port %d is out of range", s.Email.Port)
		}
		if _, err := mail.ParseAddress(s.Email.Email); err != nil {
			return fmt.Errorf("invalid email %q", s.Email.Email)
		}
		return nil
	case KindGoogleCalendar:
		if s.GoogleCalendar == nil {
			return errors.New("google_calendar settings are required")
		}
		if strings.TrimSpace(s.GoogleCalendar.APIKey) == "" {
			return errors.New("api_key is required")
		}
		return nil
	case KindWebhook:
		if s.Webhook == nil {
			return errors.New("webhook settings are required")
		}
		return validateURL("url", s.Webhook.URL, false)
	}
	return fmt.Errorf("unknown integration %q", kind)
}

func validateURL(field, raw string, httpsOnly bool) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", field)
	}
	switch {
	case u.Scheme == "https":
		return nil
	case u.Scheme == "http" && !httpsOnly:
		return nil
	}
	return fmt.Errorf("%s has unsupported scheme %q", field, u.Scheme)
}
