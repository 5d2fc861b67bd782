package smtp

import (
	"github.com/go-api-pool/internal/config"
	gomail "gopkg.in/gomail.v2"
)

// Mailer opens SMTP sessions. The email worker dials once per batch and
// reuses the session for every message in it.
type Mailer interface {
	Dial() (Sender, error)
	SendEmail(to, subject, htmlBody string) error
}

// Sender is an open SMTP session. Close it when the batch is done.
type Sender interface {
	Send(to, subject, htmlBody string) error
	Close() error
}

type mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

func (m *mailer) Dial() (Sender, error) {
	sc, err := m.dialer.Dial()
	if err != nil {
		return nil, err
	}
	return &session{sc: sc, from: m.from}, nil
}

// SendEmail dials, sends a single message and closes. For batches use Dial.
func (m *mailer) SendEmail(to, subject, htmlBody string) error {
	s, err := m.Dial()
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Send(to, subject, htmlBody)
}

type session struct {
	sc   gomail.SendCloser
	from string
}

func (s *session) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return gomail.Send(s.sc, msg)
}

func (s *session) Close() error {
	return s.sc.Close()
}
