// Package web is the HTTP surface: registration, login, profile and
// task pages. It stays thin; scheduling, authentication and mail live
// in their own packages.
package web

import (
	"net/http"
	"time"

	"github.com/smckee/nagmail/pkg/auth"
	"github.com/smckee/nagmail/pkg/db"
	"github.com/smckee/nagmail/pkg/logger"
)

type Server struct {
	Bridge *auth.Bridge
}

func NewServer(bridge *auth.Bridge) *Server {
	return &Server{Bridge: bridge}
}

// Routes wires every page behind the session-bridge middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /landing", s.handleLanding)
	mux.HandleFunc("GET /register", s.handleRegisterForm)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /confirm", s.handleConfirm)
	mux.HandleFunc("GET /logout", s.handleLogout)
	mux.HandleFunc("GET /set_lang/{lang}", s.handleSetLang)

	mux.HandleFunc("GET /profile", auth.RequireLogin(s.handleProfile))
	mux.HandleFunc("GET /task/{id}", auth.RequireLogin(s.handleTaskForm))
	mux.HandleFunc("POST /task/{id}", auth.RequireLogin(s.handleTaskSave))
	mux.HandleFunc("POST /delete/{id}", auth.RequireLogin(s.handleTaskDelete))
	mux.HandleFunc("GET /ack/{id}", auth.RequireLogin(s.handleAckForm))
	mux.HandleFunc("POST /ack/{id}", auth.RequireLogin(s.handleAck))

	return s.Bridge.Middleware(mux)
}

// ListenAndServe blocks serving the app until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	logger.Info("web server listening", "addr", addr)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}

// localToday is the calendar date in the identity's timezone.
func localToday(identity *auth.Identity, now time.Time) time.Time {
	loc, err := time.LoadLocation(identity.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return db.Date(local.Year(), local.Month(), local.Day())
}
