// Package httpapi exposes a read-only HTTP status surface over a running
// round: its current state, whether it finished successfully, and which
// peers were blamed. It follows the same BaseServer shape the rest of
// the stack uses for health and drain endpoints, wired with chi and the
// shared structured-logging middleware.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/atomic"

	"github.com/flashbots/go-utils/httplogger"

	"github.com/flashbots/shuffleround/round"
)

// RouteRegistrar registers routes with the server's router, matching the
// component-registration pattern the rest of this stack's HTTP surfaces use.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// Config holds the settings a Server needs to bind and serve.
type Config struct {
	// ListenAddr is the address and port to listen on.
	ListenAddr string

	// Log is the structured logger for server operations. Defaults to
	// slog.Default() when nil.
	Log *slog.Logger

	// DrainDuration is how long after a /drain request the server logs that
	// the drain period is complete. /drain itself flips readiness and
	// returns at once; the wait runs in the background.
	DrainDuration time.Duration

	// GracefulShutdownDuration bounds how long Shutdown waits for
	// in-flight requests.
	GracefulShutdownDuration time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the shuffle-round status HTTP surface: liveness/readiness/drain
// endpoints plus whatever RouteRegistrars are registered with it.
type Server struct {
	cfg     *Config
	log     *slog.Logger
	isReady atomic.Bool
	srv     *http.Server
}

// New builds a Server with the standard middleware stack and health
// endpoints, plus routes contributed by registrars.
func New(cfg *Config, registrars ...RouteRegistrar) *Server {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	srv := &Server{cfg: cfg, log: log}
	srv.isReady.Store(true)

	router := srv.createRouter(registrars)
	srv.srv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return srv
}

func (s *Server) createRouter(registrars []RouteRegistrar) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Accept"},
		MaxAge:         300,
	}))

	for _, registrar := range registrars {
		registrar.RegisterRoutes(r)
	}

	r.With(s.httpLogger).Get("/livez", s.handleLivez)
	r.With(s.httpLogger).Get("/readyz", s.handleReadyz)
	r.With(s.httpLogger).Get("/drain", s.handleDrain)
	r.With(s.httpLogger).Get("/undrain", s.handleUndrain)

	return r
}

func (s *Server) httpLogger(next http.Handler) http.Handler {
	return httplogger.LoggingMiddlewareSlog(s.log, next)
}

func (s *Server) handleLivez(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if !s.isReady.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleDrain(w http.ResponseWriter, r *http.Request) {
	if !s.isReady.Swap(false) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already draining"})
		return
	}
	s.log.Info("httpapi: marked not ready")

	go func() {
		time.Sleep(s.cfg.DrainDuration)
		s.log.Info("httpapi: drain period complete")
	}()

	writeJSON(w, http.StatusOK, map[string]string{"status": "draining"})
}

func (s *Server) handleUndrain(w http.ResponseWriter, r *http.Request) {
	if s.isReady.Swap(true) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already ready"})
		return
	}
	s.log.Info("httpapi: marked ready")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// RunInBackground starts serving in a goroutine and returns immediately.
func (s *Server) RunInBackground() {
	go func() {
		s.log.Info("httpapi: starting", "listenAddress", s.cfg.ListenAddr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("httpapi: server failed", "err", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.GracefulShutdownDuration)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Error("httpapi: graceful shutdown failed", "err", err)
	} else {
		s.log.Info("httpapi: stopped")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// RoundProvider supplies the round whose status the status routes report.
// A nil return means no round has started yet.
type RoundProvider interface {
	Current() *round.Round
}

// StatusRegistrar contributes the /round/* read-only status routes.
type StatusRegistrar struct {
	Provider RoundProvider
}

// RegisterRoutes mounts /round/status and /round/bad-members.
func (sr *StatusRegistrar) RegisterRoutes(r chi.Router) {
	r.Get("/round/status", sr.handleStatus)
	r.Get("/round/bad-members", sr.handleBadMembers)
}

type statusResponse struct {
	State      string `json:"state"`
	Successful bool   `json:"successful"`
}

func (sr *StatusRegistrar) handleStatus(w http.ResponseWriter, r *http.Request) {
	current := sr.Provider.Current()
	if current == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no round in progress"})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		State:      current.State().String(),
		Successful: current.Successful(),
	})
}

func (sr *StatusRegistrar) handleBadMembers(w http.ResponseWriter, r *http.Request) {
	current := sr.Provider.Current()
	if current == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no round in progress"})
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"bad_members": current.BadMembers()})
}
