package mailer

import (
	"context"
	"log"
)

type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

// DevConsoleMailer prints passcodes to the log instead of sending mail.
type DevConsoleMailer struct {
	enabled bool
}

func NewDevConsoleMailer(enabled bool) *DevConsoleMailer {
	return &DevConsoleMailer{enabled: enabled}
}

func (m *DevConsoleMailer) SendOTP(_ context.Context, email, code string) error {
	if m.enabled {
		log.Printf("[DEV-EMAIL] one-time passcode email=%s code=%s", email, code)
	}
	return nil
}
