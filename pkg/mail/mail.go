// Package mail sends outbound email through a swappable transport.
// Production uses SMTP or the Resend HTTP API; tests inject a
// recording fake.
package mail

import (
	"context"
	"fmt"

	"github.com/smckee/nagmail/pkg/config"
)

type Message struct {
	To      string
	From    string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender picks the transport configured under mail.provider.
func NewSender(cfg config.MailConfig) (Sender, error) {
	switch cfg.Provider {
	case "smtp", "":
		return &SMTPSender{cfg: cfg}, nil
	case "resend":
		return &ResendSender{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unsupported mail provider %q", cfg.Provider)
	}
}
