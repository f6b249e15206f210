// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start today's round (creates or reuses session)
//   - POST /daily/guess       → submit a guess for today's round
//   - GET  /daily/leaderboard → top results for today (or ?date=YYYY-MM-DD)
//
// Everyone breaks the same code on a given UTC date, derived from the date
// and DAILY_SALT. One finished round per player per day: wins are stored in
// the database; sessions live in memory while in play and are swept once
// their date is older than yesterday.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/daily"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/records"
	"github.com/robalobadob/mastermind/internal/store"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	salt     string
	now      func() time.Time
	sessions map[string]string // userID|date → game id
	mu       sync.Mutex        // guards sessions
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		salt:     s.cfg.DailySalt,
		now:      time.Now,
		sessions: make(map[string]string),
	}
	s.dailyRoutes = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// playerID is the user id when signed in, else the anonymous id.
func playerID(o records.Owner) string {
	if o.UserID != "" {
		return o.UserID
	}
	return o.AnonID
}

// claim re-keys the anonymous player's sessions to userID. A session the
// user already holds for the same date wins.
func (d *dailyServer) claim(anonID, userID string) {
	if anonID == "" || userID == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, id := range d.sessions {
		date, ok := strings.CutPrefix(key, anonID+"|")
		if !ok {
			continue
		}
		delete(d.sessions, key)
		if _, taken := d.sessions[userID+"|"+date]; !taken {
			d.sessions[userID+"|"+date] = id
		}
	}
}

// prune drops sessions dated before oldest, together with their rounds,
// and sessions whose round has already been evicted.
func (d *dailyServer) prune(ctx context.Context, oldest string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for key, id := range d.sessions {
		_, date, _ := strings.Cut(key, "|")
		if date < oldest {
			if err := d.srv.store.Delete(ctx, id); err != nil {
				log.Warn().Err(err).Str("gameId", id).Msg("delete daily round")
			}
			delete(d.sessions, key)
			n++
			continue
		}
		if _, err := d.srv.store.Get(ctx, id); errors.Is(err, store.ErrNotFound) {
			delete(d.sessions, key)
			n++
		}
	}
	return n
}

// newRes is returned by /daily/new.
type newRes struct {
	GameID     string `json:"gameId"`
	Date       string `json:"date"`
	MaxGuesses int    `json:"maxGuesses"`
	Played     bool   `json:"played"`
}

// handleNew creates or reuses today's session.
//   - A stored result for today → Played=true, no game.
//   - Otherwise create/reuse an in-memory round and return its id.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	owner := d.srv.owner(w, r)
	uid := playerID(owner)
	now := d.now()
	date := daily.DateKey(now)

	if d.srv.daily != nil {
		if played, err := d.srv.daily.AlreadyPlayed(r.Context(), uid, date); err != nil {
			log.Warn().Err(err).Msg("daily already played")
		} else if played {
			writeJSON(w, http.StatusOK, newRes{Date: date, Played: true})
			return
		}
	}

	key := uid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.sessions[key]; ok {
		if e, err := d.srv.store.Get(r.Context(), id); err == nil {
			writeJSON(w, http.StatusOK, newRes{GameID: id, Date: date, MaxGuesses: e.Round.MaxGuesses, Played: e.Round.Finished})
			return
		}
	}

	round, err := game.NewRound(daily.SecretFor(now, d.salt), d.srv.cfg.MaxGuesses)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "daily_unavailable")
		return
	}
	e := &store.Entry{Round: round, Mode: store.ModeDaily, Owner: owner, Date: date, Started: time.Now()}
	if err := d.srv.store.Save(r.Context(), e); err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.sessions[key] = round.ID

	writeJSON(w, http.StatusOK, newRes{GameID: round.ID, Date: date, MaxGuesses: round.MaxGuesses})
}

// dailyGuessReq is the request payload for /daily/guess.
type dailyGuessReq struct {
	GameID string   `json:"gameId"`
	Guess  []string `json:"guess"`
}

// handleGuess validates and applies a guess to the caller's daily round.
// A win is written to the leaderboard with the elapsed time since /daily/new.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	var p dailyGuessReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	guess, err := game.ParseCode(p.Guess)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	uid := playerID(d.srv.owner(w, r))
	var (
		res    guessRes
		result *daily.Result
	)
	err = d.srv.store.Update(r.Context(), p.GameID, func(e *store.Entry) error {
		if e.Mode != store.ModeDaily || playerID(e.Owner) != uid {
			return store.ErrNotFound
		}
		fb, st, err := e.Round.ApplyGuess(guess)
		if err != nil {
			return err
		}
		res = humanView(e.Round, fb, st)
		if st == game.StateWon {
			result = &daily.Result{
				UserID:    uid,
				Date:      e.Date,
				Guesses:   e.Round.GuessCount(),
				ElapsedMs: int(time.Since(e.Started).Milliseconds()),
			}
		}
		return nil
	})
	if err != nil {
		writeGameError(w, err)
		return
	}

	if result != nil && d.srv.daily != nil {
		if err := d.srv.daily.InsertResult(r.Context(), *result); err != nil {
			log.Warn().Err(err).Str("user", uid).Msg("insert daily result")
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for ?date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.now())
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if d.srv.daily == nil {
		writeJSON(w, http.StatusOK, lbRes{Date: date, Top: []daily.LBRow{}})
		return
	}
	rows, err := d.srv.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
