package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Mailer is an HTTP implementation of Transport against the external
// mail-render service.
type Mailer struct {
	http   *resty.Client
	sender string
}

var _ Transport = (*Mailer)(nil)

// NewMailer creates a mailer for the given base URL.
func NewMailer(baseURL, apiKey, sender string) *Mailer {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		c.SetHeader("Authorization", "Bearer "+apiKey)
	}
	return &Mailer{http: c, sender: sender}
}

// Render asks the mail service to render the template for kind with the
// given payload and returns the preview.
func (m *Mailer) Render(ctx context.Context, kind string, data any) (*Message, error) {
	var msg Message
	resp, err := m.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"template": kind, "data": data}).
		SetResult(&msg).
		Post("/render")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("render %s: status %d", kind, resp.StatusCode())
	}
	return &msg, nil
}

// Send delivers a rendered email.
func (m *Mailer) Send(ctx context.Context, recipients []string, subject, html string) error {
	resp, err := m.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"from":       m.sender,
			"recipients": recipients,
			"subject":    subject,
			"html":       html,
		}).
		Post("/send")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("send: status %d", resp.StatusCode())
	}
	return nil
}
