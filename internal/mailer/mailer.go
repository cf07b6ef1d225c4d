// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mailer sends transactional email over SMTP with STARTTLS.
// It covers two flows with different failure semantics: contact-form
// notifications (failures surface to the submitter) and password-reset
// links (failures are swallowed so the form never reveals whether an
// account exists).
package mailer

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"tailorcms/internal/models"
)

// Mailer delivers mail through a single configured SMTP relay.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	timeout  time.Duration
}

// New creates a Mailer for the given relay. Returns nil when host or
// from is empty, allowing the app to run without outbound mail.
func New(host, port, username, password, from string) *Mailer {
	if host == "" || from == "" {
		return nil
	}
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		timeout:  30 * time.Second,
	}
}

// SendContactNotification emails a contact-form submission to the
// configured inbox. The error is returned so the handler can tell the
// submitter their message may not have arrived.
func (m *Mailer) SendContactNotification(to string, sub *models.ContactSubmission) error {
	var b strings.Builder
	fmt.Fprintf(&b, "New contact submission from %s <%s>\r\n\r\n", sub.Name, sub.Email)
	if sub.Company != nil && *sub.Company != "" {
		fmt.Fprintf(&b, "Company: %s\r\n", *sub.Company)
	}
	if sub.SourceURL != nil && *sub.SourceURL != "" {
		fmt.Fprintf(&b, "Submitted from: %s\r\n", *sub.SourceURL)
	}
	fmt.Fprintf(&b, "\r\n%s\r\n", sub.Message)

	subject := "Contact form: " + sub.Name
	if err := m.send(to, subject, b.String(), sub.Email); err != nil {
		return fmt.Errorf("send contact notification: %w", err)
	}
	return nil
}

// SendPasswordReset emails a reset link. Errors are logged, never
// returned: the reset form responds identically whether or not the
// address has an account or the mail went out.
func (m *Mailer) SendPasswordReset(to, resetURL string) {
	body := fmt.Sprintf(
		"A password reset was requested for this address.\r\n\r\n"+
			"Reset your password within the next hour:\r\n%s\r\n\r\n"+
			"If you did not request this, ignore this email.\r\n", resetURL)

	if err := m.send(to, "Password reset", body, ""); err != nil {
		slog.Error("password reset email failed", "error", err)
	}
}

// send delivers one message: STARTTLS, optional SASL PLAIN auth, then
// a single MAIL/RCPT/DATA transaction.
func (m *Mailer) send(to, subject, body, replyTo string) error {
	// Nil receiver means SMTP is not configured; callers treat that the
	// same as any other delivery failure.
	if m == nil {
		return errors.New("smtp not configured")
	}

	addr := m.host + ":" + m.port

	client, err := smtp.DialStartTLS(addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer client.Close()

	if m.username != "" {
		if err := client.Auth(sasl.NewPlainClient("", m.username, m.password)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	msg := m.buildMessage(to, subject, body, replyTo)
	if err := client.SendMail(m.from, []string{to}, strings.NewReader(msg)); err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}

	return client.Quit()
}

func (m *Mailer) buildMessage(to, subject, body, replyTo string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	if replyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", replyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}
