package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/smckee/nagmail/pkg/auth"
	"github.com/smckee/nagmail/pkg/db"
	"github.com/smckee/nagmail/pkg/i18n"
	"github.com/smckee/nagmail/pkg/logger"
	"github.com/smckee/nagmail/pkg/ratelimit"
	"github.com/smckee/nagmail/pkg/tz"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if auth.CurrentUser(r) != nil {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/landing", http.StatusSeeOther)
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	render(w, "landing", map[string]any{
		"Title": "Welcome",
		"User":  auth.CurrentUser(r),
	})
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	render(w, "register", map[string]any{
		"Title":     "Register",
		"User":      auth.CurrentUser(r),
		"Email":     "",
		"Languages": i18n.Languages,
		"Zones":     tz.Zones(time.Now().UTC()),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromRequest(r)
	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" || !strings.Contains(email, "@") {
		render(w, "register", map[string]any{
			"Title":      "Register",
			"Email":      email,
			"EmailError": "a valid email address is required",
			"Languages":  i18n.Languages,
			"Zones":      tz.Zones(time.Now().UTC()),
		})
		return
	}

	language := r.FormValue("language")
	timezone := r.FormValue("timezone")
	if !tz.Valid(timezone) {
		timezone = "UTC"
	}

	err := s.Bridge.Register(r.Context(), email, language, timezone)
	s.renderConfirm(w, identity, err)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	render(w, "login", map[string]any{
		"Title": "Log in",
		"User":  auth.CurrentUser(r),
		"Email": "",
		"Path":  r.URL.Query().Get("path"),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromRequest(r)
	email := strings.TrimSpace(r.FormValue("email"))
	destPath := r.FormValue("path")
	if destPath == "" || !strings.HasPrefix(destPath, "/") {
		destPath = "/profile"
	}

	user, err := db.GetUserByEmail(email)
	if err != nil {
		if !db.IsNotFound(err) {
			logger.Error("failed to look up user for login", "error", err)
		}
		// Unknown addresses land on the same confirmation screen so
		// the form does not reveal which emails have accounts.
		s.renderConfirm(w, identity, nil)
		return
	}

	err = s.Bridge.IssueLoginLink(r.Context(), user, destPath)
	s.renderConfirm(w, identity, err)
}

// renderConfirm shows the post-submit confirmation screen. Rate
// limiting and mail failures become short notices on top of it; the
// page itself is the same in every case.
func (s *Server) renderConfirm(w http.ResponseWriter, identity *auth.Identity, err error) {
	var notice string
	var limited *ratelimit.Error
	switch {
	case err == nil:
		notice = ""
	case errors.As(err, &limited):
		notice = i18n.T(identity.Language, "notice.rate_limited")
	default:
		logger.Error("login email failed", "error", err)
		notice = i18n.T(identity.Language, "notice.mail_failed")
	}
	render(w, "confirm", map[string]any{
		"Title":  "Check your inbox",
		"User":   identity.User,
		"Notice": notice,
	})
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	render(w, "confirm", map[string]any{
		"Title": "Check your inbox",
		"User":  auth.CurrentUser(r),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.Logout(w, r)
	http.Redirect(w, r, "/landing", http.StatusSeeOther)
}

func (s *Server) handleSetLang(w http.ResponseWriter, r *http.Request) {
	lang := r.PathValue("lang")
	if !i18n.Known(lang) {
		http.NotFound(w, r)
		return
	}

	identity := auth.FromRequest(r)
	if identity.Session != nil {
		if identity.Session.Data == nil {
			identity.Session.Data = map[string]any{}
		}
		identity.Session.Data["language"] = lang
		if err := db.SaveSession(identity.Session); err != nil {
			logger.Error("failed to save session language", "error", err)
		}
	}
	if identity.User != nil {
		identity.User.Language = lang
		if err := db.DB.Save(identity.User).Error; err != nil {
			logger.Error("failed to save user language", "user_id", identity.User.ID, "error", err)
		}
	}

	target := r.Referer()
	if target == "" {
		target = "/landing"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
