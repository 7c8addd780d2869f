// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the Burgundy backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/maps", "/scores".
//   - Game endpoints (optional auth): /game/new and /game/{id}/*.
//   - Daily challenge endpoints (optional auth): mounted under /daily.
//   - Auth endpoints: /auth/* (auth.go).
//   - Live state push over websockets (ws.go).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Engine errors map to HTTP statuses in one table (errors.go).
//   - The websocket route sits outside the timeout group; the connection
//     outlives any single request deadline.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/burgundy/apps/go-server/internal/daily"
	"github.com/robalobadob/burgundy/apps/go-server/internal/scores"
	"github.com/robalobadob/burgundy/apps/go-server/internal/store"
)

// Server bundles the router, live sessions, and the SQL-backed stores.
type Server struct {
	r      *chi.Mux
	store  store.Store
	db     *sql.DB
	saves  *store.Saves
	scores *scores.Store
	ledger *scores.Ledger
	daily  *daily.Store
	hub    *hub

	// resumeMu keeps two requests from resuming the same save twice.
	resumeMu sync.Mutex

	sellNeedsDouble bool
	dailySalt       string
	now             func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *sql.DB) *Server {
	s := &Server{
		r:               chi.NewRouter(),
		store:           st,
		db:              db,
		saves:           store.NewSaves(db),
		scores:          scores.NewStore(db),
		ledger:          scores.NewLedger(),
		daily:           daily.NewStore(db),
		hub:             newHub(),
		sellNeedsDouble: envBool("SELL_NEEDS_DOUBLE"),
		dailySalt:       getEnv("DAILY_SALT", "local_dev_salt"),
		now:             time.Now,
	}
	s.loadLedger()

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(jsonContentType)
	s.r.Use(corsFromEnv)

	// live updates; no request timeout
	s.r.With(s.withOptionalAuth()).Get("/game/{id}/ws", s.handleWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"burgundy-go","endpoints":["/health","/maps","/scores","POST /game/new","POST /daily/new","/auth/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		s.mountMaps(r)
		s.mountScores(r)

		// Game + daily: OPTIONAL AUTH (guests can play)
		opt := r.With(s.withOptionalAuth())
		s.mountGame(opt)
		s.mountDaily(opt)

		s.mountAuthRoutes(r)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// loadLedger seeds the in-memory archive from the database, oldest first.
func (s *Server) loadLedger() {
	recent, err := s.scores.Recent(context.Background(), scores.Capacity)
	if err != nil {
		log.Warn().Err(err).Msg("load recent scores")
		return
	}
	for i := len(recent) - 1; i >= 0; i-- {
		s.ledger.Add(recent[i])
	}
	log.Info().Int("scores", s.ledger.Len()).Msg("loaded high scores")
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := clientOrigin()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientOrigin() string { return getEnv("CLIENT_ORIGIN", "http://localhost:5173") }

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody reads an optional JSON body; an empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string) bool {
	b, _ := strconv.ParseBool(os.Getenv(k))
	return b
}
