package email

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/mailbatch/mailbatch/internal/config"
	"github.com/mailbatch/mailbatch/internal/logger"
)

// SMTPSender implements Transport over an implicit-TLS SMTP connection.
// It holds at most one open session at a time; the session is authenticated
// during dial and reused across sends until Reconnect or Close.
type SMTPSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	session  gomail.SendCloser
	log      *logger.Logger
}

// NewSMTPSender creates a new SMTPSender. No connection is made until
// Ping or Connect is called.
func NewSMTPSender(cfg *config.Config, log *logger.Logger) *SMTPSender {
	d := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	d.SSL = true

	return &SMTPSender{
		dialer:   d,
		from:     cfg.Email.From,
		fromName: cfg.Email.FromName,
		log:      log.WithComponent("smtp"),
	}
}

// Ping opens a session, authenticates and immediately closes it.
func (s *SMTPSender) Ping(ctx context.Context) error {
	s.log.Info().Str("addr", s.dialer.Host).Int("port", s.dialer.Port).Msg("testing SMTP connection")
	sc, err := s.dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp connection test failed: %w", err)
	}
	if err := sc.Close(); err != nil {
		return fmt.Errorf("smtp connection test failed on close: %w", err)
	}
	s.log.Info().Msg("SMTP connection test successful")
	return nil
}

// Connect establishes the long-lived session used by Send.
func (s *SMTPSender) Connect() error {
	sc, err := s.dialer.Dial()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	s.session = sc
	s.log.Info().Str("addr", s.dialer.Host).Msg("connected to SMTP server")
	return nil
}

// Reconnect discards the current session and dials a fresh one,
// re-authenticating in the process.
func (s *SMTPSender) Reconnect() error {
	if s.session != nil {
		// Best effort: the old session is usually already dead.
		_ = s.session.Close()
		s.session = nil
	}
	s.log.Info().Msg("reconnecting to SMTP server")
	return s.Connect()
}

// Close releases the current session, if any.
func (s *SMTPSender) Close() error {
	if s.session == nil {
		return nil
	}
	err := s.session.Close()
	s.session = nil
	return err
}

// Send delivers one message over the current session, connecting first if
// no session is open.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.session == nil {
		if err := s.Connect(); err != nil {
			return err
		}
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), s.dialer.Host))
	if msg.TextBody != "" {
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	} else {
		m.SetBody("text/html", msg.HTMLBody)
	}

	if err := gomail.Send(s.session, m); err != nil {
		return err
	}
	return nil
}
