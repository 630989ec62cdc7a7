// Package api provides the REST API server for PaperBot: digest reads,
// subscriber management, and run control.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/paperbot-dev/paperbot/internal/store"
)

// TriggerFunc runs one aggregation pass for the given day.
type TriggerFunc func(ctx context.Context, day string) error

// Config holds the API server settings.
type Config struct {
	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string // bcrypt hash
}

// Server holds the dependencies for the API.
type Server struct {
	store     *store.Store
	cfg       Config
	trigger   TriggerFunc
	jwtSecret []byte
	logger    *slog.Logger
}

// NewServer creates a new API Server instance. trigger may be nil, in which
// case POST /api/runs responds 503.
func NewServer(st *store.Store, cfg Config, trigger TriggerFunc) *Server {
	return &Server{
		store:     st,
		cfg:       cfg,
		trigger:   trigger,
		jwtSecret: []byte(cfg.JWTSecret),
		logger:    slog.Default(),
	}
}

// Routes returns the configured http.Handler for the API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("POST /api/auth/login", s.handleLogin())
	mux.HandleFunc("GET /api/digests/latest", s.handleLatestDigest())
	mux.HandleFunc("GET /api/digests/{date}", s.handleDigestByDate())
	mux.HandleFunc("POST /api/subscribers", s.handleSubscribe())

	// Admin (require JWT)
	mux.Handle("GET /api/subscribers", s.requireAuth(http.HandlerFunc(s.handleListSubscribers())))
	mux.Handle("DELETE /api/subscribers/{email}", s.requireAuth(http.HandlerFunc(s.handleUnsubscribe())))
	mux.Handle("GET /api/runs", s.requireAuth(http.HandlerFunc(s.handleListRuns())))
	mux.Handle("POST /api/runs", s.requireAuth(http.HandlerFunc(s.handleTriggerRun())))

	return mux
}

// --- Helpers ---

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
