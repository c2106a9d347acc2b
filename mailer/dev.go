package mailer

import (
	"context"

	"github.com/rs/zerolog"
)

type devSender struct {
	log zerolog.Logger
}

// NewDevSender returns a sender that only logs messages. Used when no
// Postmark credentials are configured.
func NewDevSender(log zerolog.Logger) EmailSender {
	return &devSender{log: log}
}

func (s *devSender) Send(_ context.Context, msg Message) error {
	s.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("tag", msg.Tag).
		Str("body", msg.BodyHTML).
		Msg("dev mailer: email not sent")
	return nil
}
