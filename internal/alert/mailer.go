package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// Notifier delivers an alert for a service.
type Notifier interface {
	Notify(ctx context.Context, service, subject, message string) error
}

// Mailer sends plain-text alert emails over authenticated SMTP with
// STARTTLS, the way the newsletter system's Mailgun account expects.
type Mailer struct {
	client        *mail.Client
	from          string
	to            string
	subjectPrefix string
	now           func() time.Time
}

// MailerOptions carries SMTP settings from config.
type MailerOptions struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	To            string
	SubjectPrefix string
	UseTLS        bool
}

func NewMailer(opts MailerOptions) (*Mailer, error) {
	tlsPolicy := mail.TLSMandatory
	if !opts.UseTLS {
		tlsPolicy = mail.NoTLS
	}
	client, err := mail.NewClient(opts.Host,
		mail.WithPort(opts.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(opts.Username),
		mail.WithPassword(opts.Password),
		mail.WithTLSPolicy(tlsPolicy),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &Mailer{
		client:        client,
		from:          opts.From,
		to:            opts.To,
		subjectPrefix: opts.SubjectPrefix,
		now:           time.Now,
	}, nil
}

func (m *Mailer) Notify(ctx context.Context, service, subject, message string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid alert sender address: %w", err)
	}
	if err := msg.To(m.to); err != nil {
		return fmt.Errorf("invalid alert recipient address: %w", err)
	}
	msg.Subject(fmt.Sprintf("%s %s", m.subjectPrefix, subject))
	msg.SetBodyString(mail.TypeTextPlain, m.renderBody(service, subject, message))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}

func (m *Mailer) renderBody(service, subject, message string) string {
	return fmt.Sprintf(`Newsletter System Alert

Service: %s
Time: %s UTC
Issue: %s

Details:
%s

---
Newsletter System Monitoring Service
`, service, m.now().UTC().Format(time.RFC3339), subject, message)
}
