// Package auth bridges incoming requests to an authenticated user:
// it redeems login tokens, maintains cookie sessions, guards pages
// that need an identity, and issues new login links behind the rate
// limiter.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/smckee/nagmail/pkg/db"
	"github.com/smckee/nagmail/pkg/i18n"
)

const SessionCookie = "nagmail_session"

type contextKey string

const identityKey contextKey = "nagmail_identity"

// Identity is the resolved state of one request. User is nil for
// anonymous requests; Language and Timezone are always usable and
// fall back to defaults.
type Identity struct {
	User     *db.User
	Session  *db.Session
	Language string
	Timezone string
}

func anonymousIdentity() *Identity {
	return &Identity{Language: i18n.DefaultLanguage, Timezone: "UTC"}
}

// FromRequest returns the identity resolved by the middleware. It is
// never nil once the middleware ran.
func FromRequest(r *http.Request) *Identity {
	if id, ok := r.Context().Value(identityKey).(*Identity); ok {
		return id
	}
	return anonymousIdentity()
}

func CurrentUser(r *http.Request) *db.User {
	return FromRequest(r).User
}

func withIdentity(r *http.Request, id *Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, id))
}

func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   SessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// Logout drops the session row and the cookie. Nothing on the user
// record changes.
func Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		db.DeleteSession(cookie.Value)
	}
	clearSessionCookie(w)
}
