package mail

import (
	"fmt"
	"html"

	"github.com/smckee/nagmail/pkg/i18n"
)

// ComposeReminder renders the reminder email for one due task in the
// owner's language. The link logs the owner straight into the task's
// acknowledgement page.
func ComposeReminder(lang, to, taskName, taskDescription, link string) Message {
	text := fmt.Sprintf("%s\n\n%s\n\n%s\n%s\n",
		i18n.T(lang, "reminder.intro"),
		taskDescription,
		i18n.T(lang, "reminder.action"),
		link,
	)
	htmlBody := fmt.Sprintf(
		"<p>%s</p><p>%s</p><p><a href=%q>%s</a></p>",
		html.EscapeString(i18n.T(lang, "reminder.intro")),
		html.EscapeString(taskDescription),
		link,
		html.EscapeString(i18n.T(lang, "reminder.action")),
	)
	return Message{
		To:      to,
		Subject: i18n.T(lang, "reminder.subject", taskName),
		Text:    text,
		HTML:    htmlBody,
	}
}

// ComposeLogin renders the login/registration email carrying a magic
// link.
func ComposeLogin(lang, to, link string) Message {
	text := fmt.Sprintf("%s\n%s\n\n%s\n",
		i18n.T(lang, "login.body"),
		link,
		i18n.T(lang, "login.footer"),
	)
	htmlBody := fmt.Sprintf(
		"<p>%s</p><p><a href=%q>%s</a></p><p>%s</p>",
		html.EscapeString(i18n.T(lang, "login.body")),
		link,
		link,
		html.EscapeString(i18n.T(lang, "login.footer")),
	)
	return Message{
		To:      to,
		Subject: i18n.T(lang, "login.subject"),
		Text:    text,
		HTML:    htmlBody,
	}
}
