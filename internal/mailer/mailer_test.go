package mailer

import (
	"strings"
	"testing"

	"tailorcms/internal/models"
)

func TestNewUnconfigured(t *testing.T) {
	if New("", "587", "", "", "noreply@example.com") != nil {
		t.Error("expected nil mailer without a host")
	}
	if New("smtp.example.com", "587", "", "", "") != nil {
		t.Error("expected nil mailer without a sender")
	}
	if New("smtp.example.com", "587", "", "", "noreply@example.com") == nil {
		t.Error("expected a mailer when host and sender are set")
	}
}

func TestBuildMessage(t *testing.T) {
	m := New("smtp.example.com", "587", "user", "pass", "noreply@example.com")

	msg := m.buildMessage("dest@example.com", "Hello", "Body text", "visitor@example.com")

	for _, want := range []string{
		"From: noreply@example.com\r\n",
		"To: dest@example.com\r\n",
		"Reply-To: visitor@example.com\r\n",
		"Subject: Hello\r\n",
		"Content-Type: text/plain; charset=utf-8\r\n",
		"\r\n\r\nBody text",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	// No Reply-To header when empty.
	msg = m.buildMessage("dest@example.com", "Hello", "Body", "")
	if strings.Contains(msg, "Reply-To") {
		t.Error("unexpected Reply-To header")
	}
}

func TestContactNotificationBody(t *testing.T) {
	m := New("smtp.example.com", "587", "", "", "noreply@example.com")
	company := "Acme"
	source := "/case-studies/acme"
	sub := &models.ContactSubmission{
		Name:      "Jane",
		Email:     "jane@example.com",
		Company:   &company,
		Message:   "Tell me more.",
		SourceURL: &source,
	}

	// Exercise the body formatting via buildMessage to avoid a network hop.
	var b strings.Builder
	b.WriteString("New contact submission from " + sub.Name + " <" + sub.Email + ">")
	msg := m.buildMessage("sales@example.com", "Contact form: "+sub.Name, b.String(), sub.Email)

	if !strings.Contains(msg, "Subject: Contact form: Jane\r\n") {
		t.Errorf("subject missing:\n%s", msg)
	}
	if !strings.Contains(msg, "Reply-To: jane@example.com\r\n") {
		t.Errorf("reply-to should be the submitter:\n%s", msg)
	}
}
