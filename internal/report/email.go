package report

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	gomail "gopkg.in/mail.v2"
)

// MailConfig holds SMTP settings for digest delivery.
type MailConfig struct {
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	From     string
	To       []string
}

// Mailer sends rendered reports over SMTP.
type Mailer struct {
	cfg  MailConfig
	send func(*gomail.Message) error
}

// NewMailer creates a mailer that dials cfg.SMTPHost for every message.
func NewMailer(cfg MailConfig) *Mailer {
	m := &Mailer{cfg: cfg}
	m.send = func(msg *gomail.Message) error {
		d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
		d.Timeout = 10 * time.Second
		return d.DialAndSend(msg)
	}
	return m
}

// Send delivers markdown as plain text with an HTML alternative, attaching
// the given files (PDF or Markdown reports).
func (m *Mailer) Send(subject, markdown string, attachments ...string) error {
	if m.cfg.SMTPHost == "" || m.cfg.From == "" || len(m.cfg.To) == 0 {
		return errors.New("email: smtp host, from and to are required")
	}
	msg, err := m.compose(subject, markdown, attachments)
	if err != nil {
		return err
	}
	if err := m.send(msg); err != nil {
		return fmt.Errorf("email: send %q: %w", subject, err)
	}
	slog.Info("email sent", slog.String("subject", subject), slog.Int("recipients", len(m.cfg.To)))
	return nil
}

func (m *Mailer) compose(subject, markdown string, attachments []string) (*gomail.Message, error) {
	html, err := RenderHTML(markdown)
	if err != nil {
		return nil, err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.To...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", markdown)
	msg.AddAlternative("text/html", html)
	for _, path := range attachments {
		msg.Attach(path)
	}
	return msg, nil
}
