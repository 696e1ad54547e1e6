// Package ratelimit decides whether a login or registration email may
// be sent to a user right now. Scheduled reminder mail is never run
// through this check.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/smckee/nagmail/pkg/db"
)

const (
	// MinInterval is the hard floor between two login emails,
	// regardless of engagement. Catches double-submitted forms.
	MinInterval = 5 * time.Minute
	// RegistrationInterval applies while the user has never completed
	// a login.
	RegistrationInterval = 7 * 24 * time.Hour
	// ReturnInterval applies to users who have logged in before but
	// not since the last email went out.
	ReturnInterval = 23 * time.Hour
)

// Error reports a refused send together with when a retry becomes
// possible.
type Error struct {
	RetryAt time.Time
}

func (e *Error) Error() string {
	return fmt.Sprintf("login email rate limited until %s", e.RetryAt.Format(time.RFC3339))
}

// Check applies the send policy against the user's history. The
// branches are ordered; each assumes the previous did not decide.
//
//  1. Inside the 5 minute floor: refuse.
//  2. Logged in since the last email: the user engaged, allow.
//  3. Never logged in: a registration email stays valid, wait 7 days.
//  4. Otherwise: wait 23 hours.
//
// Check never mutates the user; the caller stamps LastLoginEmail once
// the send actually succeeded.
func Check(user *db.User, now time.Time) error {
	lastSent := user.LastLoginEmail

	if now.Sub(lastSent) < MinInterval {
		return &Error{RetryAt: lastSent.Add(MinInterval)}
	}
	if user.LastLogin != nil && user.LastLogin.After(lastSent) {
		return nil
	}
	if user.LastLogin == nil {
		if now.Sub(lastSent) < RegistrationInterval {
			return &Error{RetryAt: lastSent.Add(RegistrationInterval)}
		}
		return nil
	}
	if now.Sub(lastSent) < ReturnInterval {
		return &Error{RetryAt: lastSent.Add(ReturnInterval)}
	}
	return nil
}
