package infra

import (
	"fmt"
	"net/smtp"
	"time"

	"findautopart/internal/config"

	"github.com/jordan-wright/email"
)

const smtpSendTimeout = 10 * time.Second

// Mailer sends notification emails over a small pool of SMTP connections
// shared by the worker goroutines.
type Mailer struct {
	host string
	from string
	pool *email.Pool
}

// NewMailer returns a disabled Mailer (Enabled() == false) when SMTP_HOST is
// empty. size is the number of pooled connections.
func NewMailer(cfg *config.Config, size int) (*Mailer, error) {
	if cfg.SMTPHost == "" {
		return &Mailer{}, nil
	}
	if size < 1 {
		size = 1
	}
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	pool, err := email.NewPool(fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort), size, auth)
	if err != nil {
		return nil, fmt.Errorf("mailer: pool: %w", err)
	}
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{host: cfg.SMTPHost, from: from, pool: pool}, nil
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool { return m != nil && m.pool != nil }

// Send delivers a plain-text email.
func (m *Mailer) Send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)
	if err := m.pool.Send(e, smtpSendTimeout); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", m.host, err)
	}
	return nil
}

// Close releases the pooled connections.
func (m *Mailer) Close() {
	if m.Enabled() {
		m.pool.Close()
	}
}
