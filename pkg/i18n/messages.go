// Package i18n is a small string catalog for user-facing text. Mail
// and notices are rendered in the user's stored language; anything
// missing falls back to English.
package i18n

import "fmt"

const DefaultLanguage = "en"

// Languages lists the selectable interface languages.
var Languages = []string{"en", "fr"}

var catalog = map[string]map[string]string{
	"en": {
		"reminder.subject": "Reminder - %s",
		"reminder.intro":   "You asked to be reminded of this task.",
		"reminder.action":  "Follow this link to mark it as done and prime the next reminder:",
		"login.subject":    "Your login link",
		"login.body":       "Follow this link to log in:",
		"login.footer":     "If you did not request this email you can ignore it.",

		"notice.email_sent":   "If this address is registered, an email is on its way.",
		"notice.rate_limited": "An email was already sent recently. Check your inbox.",
		"notice.mail_failed":  "We could not send the email. Please try again later.",
		"notice.bad_token":    "This login link is not valid.",
		"notice.logged_out":   "You have been logged out.",
	},
	"fr": {
		"reminder.subject": "Rappel - %s",
		"reminder.intro":   "Vous avez demandé à être rappelé de cette tâche.",
		"reminder.action":  "Suivez ce lien pour la marquer comme faite et armer le prochain rappel :",
		"login.subject":    "Votre lien de connexion",
		"login.body":       "Suivez ce lien pour vous connecter :",
		"login.footer":     "Si vous n'avez pas demandé cet email, vous pouvez l'ignorer.",

		"notice.email_sent":   "Si cette adresse est enregistrée, un email est en route.",
		"notice.rate_limited": "Un email a déjà été envoyé récemment. Vérifiez votre boîte.",
		"notice.mail_failed":  "L'email n'a pas pu être envoyé. Réessayez plus tard.",
		"notice.bad_token":    "Ce lien de connexion n'est pas valide.",
		"notice.logged_out":   "Vous avez été déconnecté.",
	},
}

// T looks up key in the given language, formatting args into the
// message when present.
func T(lang, key string, args ...any) string {
	msg, ok := catalog[lang][key]
	if !ok {
		msg, ok = catalog[DefaultLanguage][key]
		if !ok {
			return key
		}
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Known reports whether lang is a supported language code.
func Known(lang string) bool {
	_, ok := catalog[lang]
	return ok
}
