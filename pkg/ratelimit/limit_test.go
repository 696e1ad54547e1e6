package ratelimit

import (
	"errors"
	"testing"
	"time"

	"github.com/smckee/nagmail/pkg/db"
)

var lastSent = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func userWith(lastLogin *time.Time) *db.User {
	return &db.User{
		ID:             1,
		Email:          "bob@example.com",
		LastLogin:      lastLogin,
		LastLoginEmail: lastSent,
	}
}

func TestCheckNeverLoggedIn(t *testing.T) {
	user := userWith(nil)

	cases := []struct {
		name  string
		now   time.Time
		allow bool
	}{
		{"immediately after send", lastSent.Add(time.Minute), false},
		{"after the floor but within a week", lastSent.Add(6 * time.Hour), false},
		{"just under seven days", lastSent.Add(7*24*time.Hour - time.Second), false},
		{"just over seven days", lastSent.Add(7*24*time.Hour + time.Second), true},
	}
	for _, tc := range cases {
		err := Check(user, tc.now)
		if tc.allow && err != nil {
			t.Fatalf("%s: expected allow, got %v", tc.name, err)
		}
		if !tc.allow && err == nil {
			t.Fatalf("%s: expected refusal", tc.name)
		}
	}
}

func TestCheckEngagedSinceLastEmail(t *testing.T) {
	loggedIn := lastSent.Add(time.Minute)
	user := userWith(&loggedIn)

	// Engagement does not bypass the five minute floor.
	if err := Check(user, lastSent.Add(4*time.Minute)); err == nil {
		t.Fatalf("expected refusal inside the five minute floor")
	}
	// Past the floor a fresh login resets the limiter entirely.
	if err := Check(user, lastSent.Add(5*time.Minute+time.Second)); err != nil {
		t.Fatalf("expected allow after engagement, got %v", err)
	}
}

func TestCheckLoggedInBeforeLastEmail(t *testing.T) {
	loggedIn := lastSent.Add(-time.Hour)
	user := userWith(&loggedIn)

	if err := Check(user, lastSent.Add(22*time.Hour)); err == nil {
		t.Fatalf("expected refusal before 23 hours")
	}
	if err := Check(user, lastSent.Add(23*time.Hour+time.Second)); err != nil {
		t.Fatalf("expected allow after 23 hours, got %v", err)
	}
}

func TestCheckReportsRetryTime(t *testing.T) {
	user := userWith(nil)

	err := Check(user, lastSent.Add(time.Minute))
	var limited *Error
	if !errors.As(err, &limited) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if !limited.RetryAt.Equal(lastSent.Add(MinInterval)) {
		t.Fatalf("expected retry at floor expiry, got %v", limited.RetryAt)
	}

	err = Check(user, lastSent.Add(time.Hour))
	if !errors.As(err, &limited) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if !limited.RetryAt.Equal(lastSent.Add(RegistrationInterval)) {
		t.Fatalf("expected retry after registration interval, got %v", limited.RetryAt)
	}
}

func TestCheckDoesNotMutateUser(t *testing.T) {
	user := userWith(nil)
	before := *user
	Check(user, lastSent.Add(time.Hour))
	if *user != before {
		t.Fatalf("Check mutated the user record")
	}
}
