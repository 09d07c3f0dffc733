// Package notify implements the human-confirmed notification queue that
// follows every workflow mutation. One notification at a time is previewed
// and waits for an explicit confirm or cancel; there is no automatic send
// path.
package notify

import (
	"context"
)

// Message is a rendered email ready for review.
type Message struct {
	Subject    string   `json:"subject"`
	HTML       string   `json:"html"`
	Recipients []string `json:"recipients"`
}

// Transport renders and delivers notification emails. Implemented over
// HTTP by Mailer and by stubs in tests.
type Transport interface {
	// Render produces the email preview for a notification job.
	Render(ctx context.Context, kind string, data any) (*Message, error)
	// Send delivers the email to the given recipients.
	Send(ctx context.Context, recipients []string, subject, html string) error
}

// SendResult reports the outcome of a confirmed send.
type SendResult struct {
	Sent       int      `json:"sent"`
	Recipients []string `json:"recipients"`
}
