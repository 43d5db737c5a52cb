package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"postforlife/internal/config"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string, validFor time.Duration) error
}

var resetTemplate = template.Must(template.New("reset").Parse(
	`<p>You asked to reset the password of your postforlife account.</p>
<p>The link below is valid for {{.Minutes}} minutes:</p>
<p><a href="{{.URL}}">Reset password</a></p>
<p>If you did not ask for this, ignore this email.</p>`))

type resetData struct {
	URL     string
	Minutes int
}

// RenderPasswordReset returns the subject and HTML body of the reset email.
func RenderPasswordReset(resetURL string, validFor time.Duration) (string, string, error) {
	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, resetData{URL: resetURL, Minutes: int(validFor.Minutes())}); err != nil {
		return "", "", fmt.Errorf("failed to render reset email: %w", err)
	}
	return "Forgot password", body.String(), nil
}

type SMTPMailer struct {
	cfg  config.SMTP
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg config.SMTP) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetURL string, validFor time.Duration) error {
	subject, body, err := RenderPasswordReset(resetURL, validFor)
	if err != nil {
		return err
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err = m.send(addr, auth, m.envelopeFrom(), []string{to}, m.message(to, subject, body)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	slog.InfoContext(ctx, "password reset email sent", "to", to)
	return nil
}

func (m *SMTPMailer) envelopeFrom() string {
	if m.cfg.Username != "" {
		return m.cfg.Username
	}
	from := m.cfg.From
	if start, end := strings.Index(from, "<"), strings.Index(from, ">"); start >= 0 && end > start {
		return from[start+1 : end]
	}
	return from
}

func (m *SMTPMailer) message(to, subject, body string) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(body)
	return msg.Bytes()
}
