// Package status serves the loop state over HTTP and a websocket feed.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/frudas24/padpin/internal/monitor"
	"github.com/frudas24/padpin/internal/session"
	"github.com/frudas24/padpin/internal/web"
)

const shutdownTimeout = 2 * time.Second

// MonitorProvider returns the current list of monitors.
type MonitorProvider func() ([]monitor.Monitor, error)

// Server exposes the session over HTTP.
type Server struct {
	session      *session.Session
	listMonitors MonitorProvider
	hub          *Hub
	log          *slog.Logger
}

// NewServer creates a status server reading from sess.
func NewServer(sess *session.Session, listMonitors MonitorProvider, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{session: sess, listMonitors: listMonitors, log: log}
	s.hub = NewHub(func() Message { return stateMessage(sess.Snapshot()) }, log)
	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Broadcast pushes the current session snapshot to every watcher.
func (s *Server) Broadcast() {
	s.hub.Publish(stateMessage(s.session.Snapshot()))
}

// RegisterRoutes wires API, websocket and static handlers onto the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/monitors", s.handleMonitors)
	mux.Handle("/ws/status", s.hub)
	mux.Handle("/", s.staticHandler())
}

// staticHandler serves the embedded status page.
func (s *Server) staticHandler() http.Handler {
	embedded, err := web.StaticFS()
	if err != nil {
		s.log.Warn("static assets unavailable", "err", err)
		return http.NotFoundHandler()
	}
	return http.FileServerFS(embedded)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info("status server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		s.hub.Close()
		return err
	case <-ctx.Done():
	}
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleState returns the current session snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.session.Snapshot())
}

// handleMonitors returns the list of monitors.
func (s *Server) handleMonitors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.listMonitors == nil {
		writeJSON(w, []monitor.Monitor{})
		return
	}
	list, err := s.listMonitors()
	if err != nil {
		http.Error(w, "failed to list monitors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
