// Package mailer sends transactional email. Production uses Postmark; in
// development a logging sender stands in so OTP flows work without real
// delivery.
package mailer

import "context"

// Message is one outgoing transactional email.
type Message struct {
	To       string
	Subject  string
	BodyHTML string
	Tag      string
}

// EmailSender sends a single message.
type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}
