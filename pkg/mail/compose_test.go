package mail

import (
	"strings"
	"testing"
)

func TestComposeReminder(t *testing.T) {
	msg := ComposeReminder("en", "bob@example.com", "Water plant", "the one in the kitchen",
		"https://nag.example.com/ack/3?token=ABC")

	if msg.To != "bob@example.com" {
		t.Fatalf("unexpected recipient %q", msg.To)
	}
	if msg.Subject != "Reminder - Water plant" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.Text, "https://nag.example.com/ack/3?token=ABC") {
		t.Fatalf("expected the link in the text body: %q", msg.Text)
	}
	if !strings.Contains(msg.HTML, `href="https://nag.example.com/ack/3?token=ABC"`) {
		t.Fatalf("expected the link in the html body: %q", msg.HTML)
	}
}

func TestComposeReminderLocalized(t *testing.T) {
	msg := ComposeReminder("fr", "bob@example.com", "Arroser la plante", "", "https://example.com/ack/1?token=X")
	if msg.Subject != "Rappel - Arroser la plante" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
}

func TestComposeReminderEscapesDescription(t *testing.T) {
	msg := ComposeReminder("en", "bob@example.com", "task", `<script>alert("x")</script>`, "https://example.com")
	if strings.Contains(msg.HTML, "<script>") {
		t.Fatalf("description must be escaped in html: %q", msg.HTML)
	}
}

func TestComposeLogin(t *testing.T) {
	msg := ComposeLogin("en", "bob@example.com", "https://nag.example.com/profile?token=ABC")
	if msg.Subject != "Your login link" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.Text, "https://nag.example.com/profile?token=ABC") {
		t.Fatalf("expected the link in the text body: %q", msg.Text)
	}
	if !strings.Contains(msg.HTML, `href="https://nag.example.com/profile?token=ABC"`) {
		t.Fatalf("expected the link in the html body: %q", msg.HTML)
	}
}
