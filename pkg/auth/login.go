package auth

import (
	"context"
	"fmt"

	"github.com/smckee/nagmail/pkg/db"
	"github.com/smckee/nagmail/pkg/i18n"
	"github.com/smckee/nagmail/pkg/logger"
	"github.com/smckee/nagmail/pkg/mail"
	"github.com/smckee/nagmail/pkg/ratelimit"
	"github.com/smckee/nagmail/pkg/token"
)

// IssueLoginLink mails the user a magic link to destPath. The rate
// limiter is consulted first; LastLoginEmail is stamped only after
// the transport accepted the message, and never moves backwards.
func (b *Bridge) IssueLoginLink(ctx context.Context, user *db.User, destPath string) error {
	now := b.now()
	if err := ratelimit.Check(user, now); err != nil {
		return err
	}

	link := token.LoginLink(b.BaseURL, destPath, b.Codec.Issue(user.ID))
	msg := mail.ComposeLogin(user.Language, user.Email, link)
	if err := b.Mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send login email: %w", err)
	}

	if now.After(user.LastLoginEmail) {
		user.LastLoginEmail = now
		if err := db.DB.Save(user).Error; err != nil {
			logger.Error("failed to stamp login email time", "user_id", user.ID, "error", err)
			return err
		}
	}
	return nil
}

// Register creates (or refreshes) an account for an email address and
// sends the first login link. Three cases:
//
//   - unknown address: create the user and mail the link;
//   - known address that never completed a login: the old attempt is
//     abandoned, delete it and start over;
//   - known engaged address: just mail a login link, subject to the
//     rate limiter.
//
// All three land on the same confirmation screen upstream, so the
// response never reveals whether an address already existed.
func (b *Bridge) Register(ctx context.Context, email, language, timezone string) error {
	if !i18n.Known(language) {
		language = i18n.DefaultLanguage
	}
	if timezone == "" {
		timezone = "UTC"
	}

	user, err := db.GetUserByEmail(email)
	switch {
	case err == nil && user.LastLogin == nil:
		if delErr := db.DeleteUserCascade(user.ID); delErr != nil {
			return fmt.Errorf("replace abandoned registration: %w", delErr)
		}
		user = nil
	case err == nil:
		return b.IssueLoginLink(ctx, user, "/profile")
	case !db.IsNotFound(err):
		return err
	default:
		user = nil
	}

	fresh := &db.User{
		Email:    email,
		Language: language,
		Timezone: timezone,
	}
	if err := db.DB.Create(fresh).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return b.IssueLoginLink(ctx, fresh, "/profile")
}
