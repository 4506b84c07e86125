package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/hardware-cli/internal/model"
	"github.com/sells-group/hardware-cli/internal/orchestrator"
)

var servePort int

const (
	sessionIdleTTL  = time.Hour
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		port := resolvePort(servePort, cfg.Server.Port)
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildRouter(env, newSessions(env, time.Now)),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return startServer(ctx, srv)
	},
}

// resolvePort prefers the --port flag over the configured port.
func resolvePort(flag, configured int) int {
	if flag != 0 {
		return flag
	}
	return configured
}

// startServer serves until ctx is done, then shuts down gracefully.
func startServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	return nil
}

// sessions maps API session ids to orchestrators. Idle sessions are dropped
// when new ones are created.
type sessions struct {
	env *appEnv
	now func() time.Time

	mu sync.Mutex
	m  map[string]*session
}

type session struct {
	orch     *orchestrator.Orchestrator
	lastUsed time.Time
}

func newSessions(env *appEnv, now func() time.Time) *sessions {
	return &sessions{env: env, now: now, m: make(map[string]*session)}
}

func (s *sessions) create() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, sess := range s.m {
		if now.Sub(sess.lastUsed) > sessionIdleTTL {
			delete(s.m, id)
		}
	}
	id := uuid.NewString()
	s.m[id] = &session{orch: s.env.NewSession(nil), lastUsed: now}
	return id
}

func (s *sessions) get(id string) (*orchestrator.Orchestrator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	if !ok {
		return nil, false
	}
	sess.lastUsed = s.now()
	return sess.orch, true
}

func (s *sessions) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[id]
	delete(s.m, id)
	return ok
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// buildRouter registers the API routes.
func buildRouter(env *appEnv, reg *sessions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/sessions", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusCreated, map[string]string{"id": reg.create()})
		})

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Post("/input", func(w http.ResponseWriter, req *http.Request) {
				orch, ok := reg.get(chi.URLParam(req, "id"))
				if !ok {
					writeError(w, http.StatusNotFound, "session not found")
					return
				}
				var body struct {
					Input string `json:"input"`
				}
				if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
					writeError(w, http.StatusBadRequest, "invalid request body")
					return
				}
				if body.Input == "" {
					writeError(w, http.StatusBadRequest, "input is required")
					return
				}
				writeJSON(w, http.StatusOK, orch.ProcessInput(req.Context(), body.Input))
			})

			r.Post("/select", func(w http.ResponseWriter, req *http.Request) {
				orch, ok := reg.get(chi.URLParam(req, "id"))
				if !ok {
					writeError(w, http.StatusNotFound, "session not found")
					return
				}
				var body struct {
					Index *int `json:"index"`
				}
				if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Index == nil {
					writeError(w, http.StatusBadRequest, "index is required")
					return
				}
				writeJSON(w, http.StatusOK, orch.SelectCandidate(req.Context(), *body.Index))
			})

			r.Get("/components", func(w http.ResponseWriter, req *http.Request) {
				orch, ok := reg.get(chi.URLParam(req, "id"))
				if !ok {
					writeError(w, http.StatusNotFound, "session not found")
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"components": orch.Components()})
			})

			r.Delete("/", func(w http.ResponseWriter, req *http.Request) {
				if !reg.remove(chi.URLParam(req, "id")) {
					writeError(w, http.StatusNotFound, "session not found")
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})
		})

		r.Get("/sources/{type}", func(w http.ResponseWriter, req *http.Request) {
			ct, err := model.ParseComponentType(chi.URLParam(req, "type"))
			if err != nil {
				writeError(w, http.StatusBadRequest, "unknown component type")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"type":    ct,
				"sources": env.Sources.Chain(ct),
				"blocked": env.Sources.BlockedDomains(),
			})
		})
	})

	return r
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
