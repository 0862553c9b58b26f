package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"wsprobe/internal/metrics"
	"wsprobe/internal/models"
	"wsprobe/internal/monitor"
	"wsprobe/internal/storage"
)

// Server wraps HTTP serving of the probe API.
type Server struct {
	httpServer   *http.Server
	storage      *storage.ProbeStorage
	monitor      *monitor.Monitor
	targets      []models.Target
	historyLimit int
}

// New creates a configured HTTP server for the probing service.
func New(addr string, mon *monitor.Monitor, storage *storage.ProbeStorage, targets []models.Target) *Server {
	mux := http.NewServeMux()
	s := &Server{
		httpServer:   &http.Server{Addr: addr, Handler: mux},
		storage:      storage,
		monitor:      mon,
		targets:      targets,
		historyLimit: 200,
	}
	s.registerRoutes(mux)
	return s
}

// Run blocks and serves HTTP traffic.
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the underlying mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", s.handleLatest)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/uptime", s.handleUptime)
	mux.HandleFunc("/api/live", s.handleLiveWS)
	mux.HandleFunc("/healthz", s.handleHealth)
}

func (s *Server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	if entry, ok := s.monitor.Latest(); ok {
		writeJSON(w, http.StatusOK, entry)
		return
	}
	entry, ok := s.storage.Latest()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"timestamp": nil,
			"results":   []models.ProbeResult{},
		})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, s.historyLimit)
	history := s.storage.HistoryN(limit)
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleUptime(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, s.historyLimit)
	history := s.storage.HistoryN(limit)
	summary := metrics.ComputeTargetUptime(history)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseLimit(r *http.Request, fallback int) int {
	if fallback <= 0 {
		return fallback
	}
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	if value > fallback {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
