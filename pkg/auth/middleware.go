package auth

import (
	"net/http"
	"net/url"
	"time"

	"github.com/smckee/nagmail/pkg/db"
	"github.com/smckee/nagmail/pkg/i18n"
	"github.com/smckee/nagmail/pkg/logger"
	"github.com/smckee/nagmail/pkg/mail"
	"github.com/smckee/nagmail/pkg/token"
)

// Bridge resolves requests to identities. One instance is shared by
// the whole web layer.
type Bridge struct {
	Codec      *token.Codec
	Mailer     mail.Sender
	BaseURL    string
	SessionTTL time.Duration
	Now        func() time.Time
}

func (b *Bridge) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now().UTC()
}

// Middleware runs before any page logic. Resolution order: a token in
// the query logs the user in and redirects with the token stripped; an
// existing session cookie is looked up (and cleared when stale);
// otherwise the request is anonymous.
func (b *Bridge) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t := r.URL.Query().Get("token"); t != "" {
			b.handleToken(w, r, t, next)
			return
		}

		identity := anonymousIdentity()
		if cookie, err := r.Cookie(SessionCookie); err == nil {
			identity = b.resolveSession(w, cookie.Value)
		}
		next.ServeHTTP(w, withIdentity(r, identity))
	})
}

func (b *Bridge) handleToken(w http.ResponseWriter, r *http.Request, t string, next http.Handler) {
	userID, err := b.Codec.Redeem(t)
	if err != nil {
		logger.Info("rejected login token", "path", r.URL.Path)
		http.Error(w, i18n.T(i18n.DefaultLanguage, "notice.bad_token"), http.StatusForbidden)
		return
	}

	user, err := db.GetUserByID(userID)
	if err != nil {
		if db.IsNotFound(err) {
			// Link outlived the account. Continue anonymously.
			next.ServeHTTP(w, withIdentity(r, anonymousIdentity()))
			return
		}
		logger.Error("failed to load user for token login", "user_id", userID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	now := b.now()
	user.LastLogin = &now
	if err := db.DB.Save(user).Error; err != nil {
		logger.Error("failed to record login", "user_id", user.ID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	session, err := db.CreateSession(user.ID, map[string]any{
		"language": user.Language,
		"timezone": user.Timezone,
	}, b.SessionTTL)
	if err != nil {
		logger.Error("failed to create session", "user_id", user.ID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	setSessionCookie(w, session.Token, b.SessionTTL)

	// Redirect to the same URL minus the token so it cannot leak via
	// referrer headers or history resubmission.
	query := r.URL.Query()
	query.Del("token")
	clean := url.URL{Path: r.URL.Path, RawQuery: query.Encode()}
	http.Redirect(w, r, clean.String(), http.StatusSeeOther)
}

func (b *Bridge) resolveSession(w http.ResponseWriter, sessionToken string) *Identity {
	session, err := db.GetSession(sessionToken, b.now())
	if err != nil {
		clearSessionCookie(w)
		return anonymousIdentity()
	}
	user, err := db.GetUserByID(session.UserID)
	if err != nil {
		// Account deleted since login. Drop the stale session.
		db.DeleteSession(sessionToken)
		clearSessionCookie(w)
		return anonymousIdentity()
	}

	identity := &Identity{
		User:     user,
		Session:  session,
		Language: user.Language,
		Timezone: user.Timezone,
	}
	if lang, ok := session.Data["language"].(string); ok && i18n.Known(lang) {
		identity.Language = lang
	}
	if tz, ok := session.Data["timezone"].(string); ok && tz != "" {
		identity.Timezone = tz
	}
	return identity
}

// RequireLogin guards a handler that needs an identity. Anonymous
// requests are bounced to the login page carrying the original path
// so the flow can resume afterwards.
func RequireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r) == nil {
			target := "/login?" + url.Values{"path": {r.URL.RequestURI()}}.Encode()
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}
