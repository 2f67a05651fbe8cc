package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"go.uber.org/zap"

	"github.com/nagashima/sso-idp/internal/config"
	"github.com/nagashima/sso-idp/internal/domain/interfaces"
)

var authCodeTmpl = template.Must(template.New("auth_code").Parse(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Authentication Code</title></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Your authentication code</h2>
    <p>Enter this code to finish signing in:</p>
    <p style="font-size: 32px; letter-spacing: 8px; font-weight: bold;">{{.Code}}</p>
    <p>The code expires in 10 minutes. If you did not try to sign in, you can ignore this email.</p>
</body>
</html>
`))

var signupConfirmationTmpl = template.Must(template.New("signup_confirmation").Parse(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Confirm your email</title></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Confirm your email address</h2>
    <p>Thanks for starting your registration. Click the button below to confirm this address and continue:</p>
    <p style="text-align: center;">
        <a href="{{.ConfirmURL}}" style="display: inline-block; background-color: #2563eb; color: white; text-decoration: none; padding: 12px 24px; border-radius: 5px;">Confirm email</a>
    </p>
    <p>The link is valid for 24 hours. If you did not start a registration, just ignore this email.</p>
</body>
</html>
`))

// SMTPMailer sends mail over SMTP with implicit TLS.
type SMTPMailer struct {
	config config.EmailConfig
	logger *zap.Logger
}

var _ interfaces.Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(cfg config.EmailConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{config: cfg, logger: logger}
}

func (m *SMTPMailer) SendAuthCode(ctx context.Context, to, code string) error {
	var body bytes.Buffer
	if err := authCodeTmpl.Execute(&body, struct{ Code string }{code}); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return m.send(ctx, to, "Your authentication code", body.String())
}

func (m *SMTPMailer) SendSignupConfirmation(ctx context.Context, to, confirmURL string) error {
	var body bytes.Buffer
	if err := signupConfirmationTmpl.Execute(&body, struct{ ConfirmURL string }{confirmURL}); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return m.send(ctx, to, "Confirm your email address", body.String())
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	var message bytes.Buffer
	fmt.Fprintf(&message, "From: %s\r\n", m.config.From)
	fmt.Fprintf(&message, "To: %s\r\n", to)
	fmt.Fprintf(&message, "Subject: %s\r\n", subject)
	fmt.Fprintf(&message, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&message, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&message, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	message.WriteString("\r\n")
	message.WriteString(body)

	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)

	tlsConfig := &tls.Config{ServerName: m.config.Host}

	conn, err := tls.Dial("tcp", fmt.Sprintf("%s:%d", m.config.Host, m.config.Port), tlsConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	if err := client.Mail(m.config.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(message.Bytes()); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		return fmt.Errorf("failed to quit SMTP session: %w", err)
	}

	m.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
