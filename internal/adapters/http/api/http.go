// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/focusforge/internal/adapters/repository"
	svc "github.com/okian/focusforge/internal/app"
	"github.com/okian/focusforge/internal/domain/progress"
)

// SessionCookie carries the issued session token.
const SessionCookie = "session_token"

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, repository.Account, error)
	Resume(ctx context.Context, token string) (repository.Account, error)
	Logout(ctx context.Context, token string)
	Persist(ctx context.Context, token string, snap progress.Snapshot) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	authHandler     *AuthHandler
	progressHandler *ProgressHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		authHandler:     NewAuthHandler(deps),
		progressHandler: NewProgressHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/register", MetricsMiddleware(s.authHandler.HandleRegister, "register"))
	mux.HandleFunc("/api/login", MetricsMiddleware(s.authHandler.HandleLogin, "login"))
	mux.HandleFunc("/api/logout", MetricsMiddleware(s.authHandler.HandleLogout, "logout"))
	mux.HandleFunc("/api/session", MetricsMiddleware(s.authHandler.HandleSession, "session"))
	mux.HandleFunc("/api/progress", MetricsMiddleware(s.progressHandler.HandlePersist, "progress"))
	mux.HandleFunc("/api/progress/beacon", MetricsMiddleware(s.progressHandler.HandleBeacon, "progress_beacon"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps known error kinds to their HTTP shape.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, "user_exists", err)
	case errors.Is(err, repository.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", err)
	case errors.Is(err, svc.ErrNoSession):
		writeError(w, http.StatusUnauthorized, "no_session", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}

// sessionToken extracts the session cookie value, if present.
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
