package i18n

import (
	"strings"
	"testing"
)

func TestTranslationLookup(t *testing.T) {
	if got := T("fr", "login.subject"); got != "Votre lien de connexion" {
		t.Fatalf("unexpected french subject %q", got)
	}
	if got := T("en", "reminder.subject", "Water plant"); !strings.Contains(got, "Water plant") {
		t.Fatalf("expected the task name formatted in, got %q", got)
	}
}

func TestTranslationFallsBackToEnglish(t *testing.T) {
	if got := T("de", "login.subject"); got != T("en", "login.subject") {
		t.Fatalf("expected english fallback, got %q", got)
	}
}

func TestTranslationUnknownKey(t *testing.T) {
	if got := T("en", "nonexistent.key"); got != "nonexistent.key" {
		t.Fatalf("expected the key itself, got %q", got)
	}
}

func TestKnown(t *testing.T) {
	for _, lang := range Languages {
		if !Known(lang) {
			t.Fatalf("expected %q to be known", lang)
		}
	}
	if Known("de") || Known("") {
		t.Fatalf("expected unsupported languages to be unknown")
	}
}
