// internal/httpserver/server.go
//
// HTTP server wiring for the Mastermind backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): /game/new, /game/guess, /game/ai-turn, /game/{id}.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - Without a database the game endpoints still work; history, stats,
//     accounts and the daily leaderboard are then unavailable.
//   - Optional auth decorates requests with the user when a valid token is
//     present; guests get a stable anonymous cookie instead.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/auth"
	"github.com/robalobadob/mastermind/internal/config"
	"github.com/robalobadob/mastermind/internal/daily"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/random"
	"github.com/robalobadob/mastermind/internal/records"
	"github.com/robalobadob/mastermind/internal/store"
)

// Deps are the collaborators a Server needs. DB and Rand are optional.
type Deps struct {
	Store  store.Store
	DB     *sql.DB
	Config config.Config
	Rand   game.RandSource
}

// Server bundles router, active-game store and persistence.
type Server struct {
	r       *chi.Mux
	store   store.Store
	records *records.Store
	daily   *daily.Store
	issuer  *auth.Issuer
	cfg     config.Config
	rnd     game.RandSource

	dailyRoutes *dailyServer
}

// sweepInterval is how often Run evicts idle rounds.
const sweepInterval = time.Minute

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:     chi.NewRouter(),
		store: d.Store,
		cfg:   d.Config,
		rnd:   d.Rand,
		issuer: auth.NewIssuer(d.Config.JWTSecret,
			time.Duration(d.Config.JWTExpiresDays)*24*time.Hour,
			d.Config.CookieName, d.Config.Production()),
	}
	if s.rnd == nil {
		s.rnd = random.NewLocked(nil)
	}
	if d.DB != nil {
		s.records = records.NewStore(d.DB)
		s.daily = daily.NewStore(d.DB)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(accessLog)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors(d.Config.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "mastermind-go",
			"palette":   game.DefaultPalette.Strings(),
			"endpoints": []string{"/health", "POST /game/new", "POST /game/guess", "POST /game/ai-turn", "GET /game/{id}", "/daily/*", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	opt := s.r.With(s.withOptionalAuth())
	s.mountGame(opt)
	s.mountDaily(opt)
	if s.records != nil {
		s.mountAuthRoutes()
	}

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Run serves HTTP on addr until ctx is cancelled, then drains in-flight
// requests for up to five seconds. Idle rounds are swept while it runs.
func (s *Server) Run(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()
	go s.janitor(ctx, sweepInterval)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) janitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.sweep(ctx, now)
		}
	}
}

// sweep evicts rounds idle for longer than GameTTL and daily sessions
// dated before yesterday.
func (s *Server) sweep(ctx context.Context, now time.Time) {
	games, err := s.store.Prune(ctx, now.Add(-s.cfg.GameTTL))
	if err != nil {
		log.Warn().Err(err).Msg("prune games")
	}
	sessions := s.dailyRoutes.prune(ctx, daily.DateKey(now.AddDate(0, 0, -1)))
	if games+sessions > 0 {
		log.Debug().Int("games", games).Int("dailySessions", sessions).Msg("swept idle games")
	}
}

// claimActive hands the guest's rounds in play and daily sessions to the
// signed-in user.
func (s *Server) claimActive(ctx context.Context, anonID, userID string) {
	n, err := s.store.Claim(ctx, anonID, userID)
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("claim active games")
	}
	s.dailyRoutes.claim(anonID, userID)
	if n > 0 {
		log.Info().Str("user", userID).Int("games", n).Msg("claimed active games")
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

const anonCookieName = "mastermind_anon"

// ensureAnonID returns an existing anon cookie or sets a new one.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := records.NewID()
	http.SetCookie(w, s.issuer.SessionCookie(anonCookieName, id, 180*24*time.Hour))
	return id
}

// owner identifies the caller: the signed-in user or the anonymous cookie.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) records.Owner {
	if me := auth.UserFrom(r.Context()); me != nil {
		return records.Owner{UserID: me.ID}
	}
	return records.Owner{AnonID: s.ensureAnonID(w, r)}
}
