package mail

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

var alertTemplate = template.Must(template.New("lead_alert").Parse(`New lead received ({{.Profile}})

Email:      {{.Email}}
Phone:      {{if .Phone}}{{.Phone}}{{else}}(none){{end}}
First name: {{if .FirstName}}{{.FirstName}}{{else}}(none){{end}}
Verdict:    {{.Verdict}}
Score:      {{if .Score}}{{.Score}}{{else}}n/a{{end}}
`))

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// LeadAlertSender e-mails a short lead summary to the ops inbox.
type LeadAlertSender struct {
	cfg     SMTPConfig
	profile string
	dialer  Dialer
}

func NewLeadAlertSender(cfg SMTPConfig, profile string) *LeadAlertSender {
	return &LeadAlertSender{
		cfg:     cfg,
		profile: profile,
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

// NewLeadAlertSenderWithDialer is used by tests to avoid a real SMTP server.
func NewLeadAlertSenderWithDialer(cfg SMTPConfig, profile string, d Dialer) *LeadAlertSender {
	return &LeadAlertSender{cfg: cfg, profile: profile, dialer: d}
}

func (s *LeadAlertSender) Submit(ctx context.Context, lead entity.Lead) error {
	if !s.cfg.Configured() {
		return entity.ErrNotConfigured
	}

	var body bytes.Buffer
	err := alertTemplate.Execute(&body, leadAlertData{
		Profile:   s.profile,
		Email:     lead.Email,
		Phone:     lead.Phone,
		FirstName: lead.FirstName,
		Verdict:   lead.Tags[entity.TagEmailVerdict],
		Score:     lead.Tags[entity.TagEmailScore],
	})
	if err != nil {
		return fmt.Errorf("render lead alert: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.To...)
	m.SetHeader("Subject", fmt.Sprintf("[%s] New lead: %s", s.profile, lead.Email))
	m.SetBody("text/plain", body.String())

	// gomail has no context support; the send keeps running after a
	// timeout but its result is discarded.
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send lead alert: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send lead alert: %w", ctx.Err())
	}
}
