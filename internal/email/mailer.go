package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"

	"github.com/huyhung/ecom-api/internal/config"
)

// Mailer sends templated account emails over SMTP. Callers are expected to
// invoke it from a background goroutine; every send honors the context
// deadline on the network connection.
type Mailer struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	loginLink    string

	verifyTemplateID string
	forgotTemplateID string
	templates        map[string]*template.Template
}

func NewMailer(cfg config.EmailConfig) (*Mailer, error) {
	m := &Mailer{
		smtpHost:         cfg.SMTPHost,
		smtpPort:         cfg.SMTPPort,
		smtpUser:         cfg.SMTPUser,
		smtpPassword:     cfg.SMTPPassword,
		fromEmail:        cfg.SMTPUser,
		loginLink:        cfg.LoginLink,
		verifyTemplateID: cfg.VerifyEmailTemplate,
		forgotTemplateID: cfg.ForgotPasswordTemplate,
		templates:        make(map[string]*template.Template),
	}

	for id, body := range map[string]string{
		cfg.VerifyEmailTemplate:    verifyEmailTemplate,
		cfg.ForgotPasswordTemplate: forgotPasswordTemplate,
	} {
		tmpl, err := template.New(id).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("parse template %q: %w", id, err)
		}
		m.templates[id] = tmpl
	}

	return m, nil
}

// Send renders the template identified by templateID with the given
// variables and delivers it to toEmail
func (m *Mailer) Send(ctx context.Context, toEmail, templateID, subject string, variables map[string]any) error {
	body, err := m.render(templateID, variables)
	if err != nil {
		return err
	}

	if err := m.deliver(ctx, toEmail, subject, body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

func (m *Mailer) render(templateID string, variables map[string]any) (string, error) {
	tmpl, ok := m.templates[templateID]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", templateID)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, variables); err != nil {
		return "", fmt.Errorf("execute template %q: %w", templateID, err)
	}

	return buf.String(), nil
}

// SendVerificationEmail delivers the email-verification OTP
func (m *Mailer) SendVerificationEmail(ctx context.Context, name, toEmail, otp string) error {
	return m.Send(ctx, toEmail, m.verifyTemplateID, "Email verification - HuyHung", map[string]any{
		"CustomerName":  name,
		"CustomerEmail": toEmail,
		"OTP":           otp,
	})
}

// SendForgotPasswordEmail delivers the plaintext temporary password together
// with the login link
func (m *Mailer) SendForgotPasswordEmail(ctx context.Context, name, toEmail, tempPassword string) error {
	return m.Send(ctx, toEmail, m.forgotTemplateID, "Forgot password - HuyHung", map[string]any{
		"CustomerName":  name,
		"CustomerEmail": toEmail,
		"NewPassword":   tempPassword,
		"LoginLink":     m.loginLink,
	})
}

// deliver speaks SMTP with STARTTLS, bounded by the context deadline
func (m *Mailer) deliver(ctx context.Context, to, subject, body string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		m.fromEmail, to, subject, body,
	))

	addr := net.JoinHostPort(m.smtpHost, m.smtpPort)

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.smtpHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("create smtp client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.smtpHost}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if ok, _ := client.Extension("AUTH"); ok {
		auth := smtp.PlainAuth("", m.smtpUser, m.smtpPassword, m.smtpHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.fromEmail); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	return client.Quit()
}
