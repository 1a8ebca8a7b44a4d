// Package api serves the caller-facing WebSocket API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qoodeng/wolfe/internal/agent"
	"github.com/qoodeng/wolfe/internal/buildinfo"
	"github.com/qoodeng/wolfe/internal/llm"
	"github.com/qoodeng/wolfe/internal/reservations"
	"github.com/qoodeng/wolfe/internal/tools"
	"github.com/qoodeng/wolfe/internal/voice"
)

// writeJSON encodes v as JSON to w, logging any errors at debug level.
// Errors here typically mean the client disconnected mid-response.
func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("failed to write JSON response", "error", err)
	}
}

// Dependencies carries everything a caller session needs. Transcriber
// and Synthesizer are optional; without them the server is text-only.
type Dependencies struct {
	LLM          llm.Client
	Reservations *reservations.Service
	Transcriber  voice.Transcriber
	Synthesizer  voice.Synthesizer
	Recorder     agent.Recorder

	Model             string
	MaxToolIterations int
}

// Server is the WebSocket session server. Each connection gets its own
// conversation, tool registry, and verification session.
type Server struct {
	listen string
	deps   Dependencies
	logger *slog.Logger
	server *http.Server

	upgrader websocket.Upgrader
}

// NewServer creates a new session server listening on listen
// (host:port).
func NewServer(listen string, deps Dependencies, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		listen: listen,
		deps:   deps,
		logger: logger.With("component", "api"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Start begins serving. It blocks until the listener fails or Shutdown
// is called.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /version", s.handleVersion)
	mux.HandleFunc("GET /", s.handleRoot)

	s.server = &http.Server{
		Addr:        s.listen,
		Handler:     s.withLogging(mux),
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: WebSocket sessions are long-lived.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	s.logger.Info("starting session server", "listen", s.listen)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{
		"name":    "Wolfe",
		"version": buildinfo.Version,
		"status":  "ok",
	}, s.logger)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, buildinfo.Info(), s.logger)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": "healthy"}, s.logger)
}

// handleWS upgrades the connection and runs one caller session until
// the caller hangs up.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	// Fresh verification state and registry per caller: nothing leaks
	// between calls.
	verif := reservations.NewSession()
	registry := tools.NewRegistry(s.logger)
	tools.RegisterReservationTools(registry, s.deps.Reservations, verif)

	conv := agent.NewConversation(s.logger, s.deps.LLM, registry, agent.Options{
		Model:             s.deps.Model,
		MaxToolIterations: s.deps.MaxToolIterations,
		Recorder:          s.deps.Recorder,
	})

	sess := newSession(conn, conv, s.deps.Transcriber, s.deps.Synthesizer,
		s.logger.With("conversation_id", conv.ID(), "remote", r.RemoteAddr))

	// run derives its own cancellable context and cancels it when the
	// caller hangs up.
	sess.run(r.Context())
}
