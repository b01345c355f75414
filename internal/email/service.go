package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/voicedrop/voicedrop-api/internal/config"
)

type Service interface {
	SendWelcome(email, firstName string) error
}

type smtpService struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

func NewService(cfg config.SMTPConfig) Service {
	return &smtpService{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *smtpService) SendWelcome(email, firstName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to Voicemail Drop")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour Voicemail Drop account is ready. Import your customer list and launch your first campaign from the dashboard.\n\nThe Voicemail Drop Team",
		firstName,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

// NoopService drops all mail. Used in demo mode and tests.
type NoopService struct{}

func (NoopService) SendWelcome(email, firstName string) error { return nil }
