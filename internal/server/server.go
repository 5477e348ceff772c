// Package server exposes capa's local HTTP API on the configured bind
// address. Sessions created here are persisted through the store and
// expire per session.timeout_minutes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"capa/internal/logging"
	"capa/internal/settings"
	"capa/internal/store"
)

// Server serves the local API for one settings document.
type Server struct {
	doc    *settings.ServerSettings
	store  *store.Store
	logger *slog.Logger

	listener net.Listener
	server   *http.Server
}

// New constructs the API server. The settings document and store are
// required; a nil logger falls back to a no-op logger.
func New(doc *settings.ServerSettings, st *store.Store, logger *slog.Logger) (*Server, error) {
	if doc == nil || st == nil {
		return nil, errors.New("server requires settings and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Server{doc: doc, store: st, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/api/sessions", s.handleSessions)
	mux.HandleFunc("/api/sessions/", s.handleSession)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Start begins serving on host:port from the settings document and
// shuts down when ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	bind := net.JoinHostPort(s.doc.Server.Host, strconv.Itoa(s.doc.Server.Port))
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down without waiting for ctx cancellation.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.doc.Version,
	})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.doc)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	session, err := s.store.CreateSession(r.Context())
	if err != nil {
		s.logger.Error("create session", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "create session failed")
		return
	}
	s.writeJSON(w, http.StatusCreated, sessionView(session))
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	if token == "" || strings.Contains(token, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		session, err := s.store.GetSession(r.Context(), token)
		switch {
		case errors.Is(err, store.ErrSessionNotFound):
			s.writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, store.ErrSessionExpired):
			s.writeError(w, http.StatusUnauthorized, "session expired")
		case err != nil:
			s.logger.Error("get session", logging.Error(err))
			s.writeError(w, http.StatusInternalServerError, "get session failed")
		default:
			if err := s.store.TouchSession(r.Context(), token); err != nil {
				s.logger.Warn("touch session", logging.Error(err))
			}
			s.writeJSON(w, http.StatusOK, sessionView(session))
		}
	case http.MethodDelete:
		if err := s.store.DeleteSession(r.Context(), token); err != nil {
			s.logger.Error("delete session", logging.Error(err))
			s.writeError(w, http.StatusInternalServerError, "delete session failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func sessionView(session *store.Session) sessionResponse {
	return sessionResponse{
		ID:        session.ID,
		Token:     session.Token,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
