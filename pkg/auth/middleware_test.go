package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/smckee/nagmail/pkg/db"
	"github.com/smckee/nagmail/pkg/internal/testutil"
	"github.com/smckee/nagmail/pkg/logger"
	"github.com/smckee/nagmail/pkg/mail"
	"github.com/smckee/nagmail/pkg/token"
)

var testNow = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
	fail bool
}

func (s *recordingSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return context.DeadlineExceeded
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newTestBridge(sender mail.Sender) *Bridge {
	return &Bridge{
		Codec:      token.NewCodec("test-secret"),
		Mailer:     sender,
		BaseURL:    "https://nag.example.com",
		SessionTTL: 30 * 24 * time.Hour,
		Now:        func() time.Time { return testNow },
	}
}

func createUser(t *testing.T, email string) *db.User {
	t.Helper()
	user := db.User{Email: email, Language: "fr", Timezone: "Europe/Paris", LastLoginEmail: testNow.Add(-48 * time.Hour)}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &user
}

// identityHandler records what the middleware resolved.
func identityHandler(got **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = FromRequest(r)
	})
}

func TestMiddlewareTokenLogin(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)

	bridge := newTestBridge(&recordingSender{})
	user := createUser(t, "bob@example.com")
	tok := bridge.Codec.Issue(user.ID)

	var got *Identity
	req := httptest.NewRequest(http.MethodGet, "/profile?token="+tok, nil)
	rec := httptest.NewRecorder()
	bridge.Middleware(identityHandler(&got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after token login, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/profile" {
		t.Fatalf("expected token stripped from redirect, got %q", loc)
	}

	var sessionToken string
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			sessionToken = c.Value
		}
	}
	if sessionToken == "" {
		t.Fatalf("expected a session cookie")
	}
	session, err := db.GetSession(sessionToken, testNow)
	if err != nil {
		t.Fatalf("expected a persisted session: %v", err)
	}
	if session.UserID != user.ID {
		t.Fatalf("session belongs to user %d, want %d", session.UserID, user.ID)
	}
	if lang, _ := session.Data["language"].(string); lang != "fr" {
		t.Fatalf("expected session to adopt the user language, got %q", lang)
	}

	reloaded, err := db.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if reloaded.LastLogin == nil || !reloaded.LastLogin.Equal(testNow) {
		t.Fatalf("expected last login stamped at %v, got %v", testNow, reloaded.LastLogin)
	}
}

func TestMiddlewareRejectsInvalidToken(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)

	bridge := newTestBridge(&recordingSender{})

	var got *Identity
	req := httptest.NewRequest(http.MethodGet, "/profile?token=AAAAAAAA", nil)
	rec := httptest.NewRecorder()
	bridge.Middleware(identityHandler(&got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a tampered token, got %d", rec.Code)
	}
	if got != nil {
		t.Fatalf("expected the handler not to run")
	}
	var count int64
	db.DB.Model(&db.Session{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no session for a rejected token")
	}
}

func TestMiddlewareTokenForDeletedUserIsAnonymous(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)

	bridge := newTestBridge(&recordingSender{})
	user := createUser(t, "bob@example.com")
	tok := bridge.Codec.Issue(user.ID)
	if err := db.DeleteUserCascade(user.ID); err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}

	var got *Identity
	req := httptest.NewRequest(http.MethodGet, "/profile?token="+tok, nil)
	rec := httptest.NewRecorder()
	bridge.Middleware(identityHandler(&got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through for a dangling token, got %d", rec.Code)
	}
	if got == nil || got.User != nil {
		t.Fatalf("expected an anonymous identity")
	}
}

func TestMiddlewareResolvesSessionCookie(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)

	bridge := newTestBridge(&recordingSender{})
	user := createUser(t, "bob@example.com")
	session, err := db.CreateSession(user.ID, map[string]any{"language": "fr", "timezone": "Europe/Paris"}, time.Hour)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	var got *Identity
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.Token})
	rec := httptest.NewRecorder()
	bridge.Middleware(identityHandler(&got)).ServeHTTP(rec, req)

	if got == nil || got.User == nil || got.User.ID != user.ID {
		t.Fatalf("expected the session user to be resolved")
	}
	if got.Language != "fr" || got.Timezone != "Europe/Paris" {
		t.Fatalf("expected session locale, got %q/%q", got.Language, got.Timezone)
	}
}

func TestMiddlewareClearsStaleSession(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)

	bridge := newTestBridge(&recordingSender{})
	user := createUser(t, "bob@example.com")
	session, err := db.CreateSession(user.ID, nil, time.Hour)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	// Delete only the user row so the session dangles.
	if err := db.DB.Delete(&db.User{}, user.ID).Error; err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}

	var got *Identity
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.Token})
	rec := httptest.NewRecorder()
	bridge.Middleware(identityHandler(&got)).ServeHTTP(rec, req)

	if got == nil || got.User != nil {
		t.Fatalf("expected anonymous identity for a stale session")
	}
	if _, err := db.GetSession(session.Token, testNow); !db.IsNotFound(err) {
		t.Fatalf("expected the stale session row to be dropped, got %v", err)
	}
}

func TestRequireLoginRedirectsAnonymous(t *testing.T) {
	called := false
	handler := RequireLogin(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/task/7", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if called {
		t.Fatalf("expected the guarded handler not to run")
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?path=%2Ftask%2F7" {
		t.Fatalf("expected login redirect with original path, got %q", loc)
	}
}

func TestLogoutDropsSessionOnly(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)

	user := createUser(t, "bob@example.com")
	when := testNow.Add(-time.Hour)
	user.LastLogin = &when
	if err := db.DB.Save(user).Error; err != nil {
		t.Fatalf("failed to save user: %v", err)
	}
	session, err := db.CreateSession(user.ID, nil, time.Hour)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.Token})
	rec := httptest.NewRecorder()
	Logout(rec, req)

	if _, err := db.GetSession(session.Token, testNow); !db.IsNotFound(err) {
		t.Fatalf("expected session removed, got %v", err)
	}
	reloaded, err := db.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if reloaded.LastLogin == nil || !reloaded.LastLogin.Equal(when) {
		t.Fatalf("logout must not touch persisted fields")
	}
}
