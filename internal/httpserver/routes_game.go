// internal/httpserver/routes_game.go
//
// Single-round game endpoints.
//   - POST /game/new      → start a round (human breaks or human makes)
//   - POST /game/guess    → human guess against the AI's code
//   - POST /game/ai-turn  → AI guess against the human's code
//   - GET  /game/{id}     → round history
//
// Every game belongs to the player who started it (user or anonymous
// cookie); other callers get 404.
//
// Human breakers see feedback with positions discarded (sorted markers);
// the AI's own turns report position-aligned feedback.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/ai"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/records"
	"github.com/robalobadob/mastermind/internal/store"
)

var errWrongMode = errors.New("wrong_mode")

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Post("/game/guess", s.handleGuess)
	r.Post("/game/ai-turn", s.handleAITurn)
	r.Get("/game/{id}", s.handleGetGame)
}

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Mode       string   `json:"mode"`       // "breaker" (default) | "maker"
	Secret     []string `json:"secret"`     // maker mode: the human's code
	MaxGuesses int      `json:"maxGuesses"` // optional; config default otherwise
}
type newGameRes struct {
	GameID     string   `json:"gameId"`
	Mode       string   `json:"mode"`
	MaxGuesses int      `json:"maxGuesses"`
	Palette    []string `json:"palette"`
}

// handleNewGame creates a round, keeps it in the active store and writes
// an owner row for history/stats.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	mode := store.Mode(req.Mode)
	var secret game.Code
	switch mode {
	case "", store.ModeBreaker:
		mode = store.ModeBreaker
		secret = game.RandomCode(s.rnd)
	case store.ModeMaker:
		var err error
		if secret, err = game.ParseCode(req.Secret); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "mode must be breaker or maker")
		return
	}

	maxGuesses := req.MaxGuesses
	if maxGuesses <= 0 {
		maxGuesses = s.cfg.MaxGuesses
	}
	round, err := game.NewRound(secret, maxGuesses)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	e := &store.Entry{Round: round, Mode: mode, Owner: s.owner(w, r), Started: time.Now()}
	if err := s.store.Save(r.Context(), e); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	if s.records != nil {
		if err := s.records.InsertGame(r.Context(), round.ID, string(mode), e.Owner); err != nil {
			log.Warn().Err(err).Str("gameId", round.ID).Msg("insert game row")
		}
	}
	log.Info().Str("gameId", round.ID).Str("mode", string(mode)).Msg("game started")

	writeJSON(w, http.StatusOK, newGameRes{
		GameID:     round.ID,
		Mode:       string(mode),
		MaxGuesses: round.MaxGuesses,
		Palette:    game.DefaultPalette.Strings(),
	})
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string   `json:"gameId"`
	Guess  []string `json:"guess"`
}
type guessRes struct {
	Feedback  []game.Marker `json:"feedback"` // sorted: exact, color, none
	Exact     int           `json:"exact"`
	Color     int           `json:"color"`
	State     game.State    `json:"state"`
	Guesses   int           `json:"guesses"`
	Remaining int           `json:"remaining"`
	Secret    []string      `json:"secret,omitempty"` // revealed once finished
}

// handleGuess applies a human guess to a breaker-mode round. Rounds owned
// by someone else answer 404, as for unknown ids.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	guess, err := game.ParseCode(req.Guess)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	caller := playerID(s.owner(w, r))
	var (
		res   guessRes
		owner records.Owner
	)
	err = s.store.Update(r.Context(), req.GameID, func(e *store.Entry) error {
		if playerID(e.Owner) != caller {
			return store.ErrNotFound
		}
		if e.Mode != store.ModeBreaker {
			return errWrongMode
		}
		fb, st, err := e.Round.ApplyGuess(guess)
		if err != nil {
			return err
		}
		res = humanView(e.Round, fb, st)
		owner = e.Owner
		return nil
	})
	if err != nil {
		writeGameError(w, err)
		return
	}

	s.persistGuess(r.Context(), req.GameID, owner, res.State, res.State == game.StateWon)
	writeJSON(w, http.StatusOK, res)
}

func humanView(round *game.Round, fb game.Feedback, st game.State) guessRes {
	exact, color := fb.Counts()
	sorted := fb.Sorted()
	res := guessRes{
		Feedback:  sorted[:],
		Exact:     exact,
		Color:     color,
		State:     st,
		Guesses:   round.GuessCount(),
		Remaining: round.Remaining(),
	}
	if round.Finished {
		res.Secret = round.Secret.Strings()
	}
	return res
}

// aiTurnReq/Res payloads for POST /game/ai-turn.
type aiTurnReq struct {
	GameID string `json:"gameId"`
}
type aiTurnRes struct {
	Guess     []string      `json:"guess"`
	Feedback  []game.Marker `json:"feedback"` // position-aligned
	State     game.State    `json:"state"`
	Guesses   int           `json:"guesses"`
	Remaining int           `json:"remaining"`
}

// handleAITurn lets the automated breaker take one guess at the human's
// code: next guess from memory, score it, fold the feedback back in.
func (s *Server) handleAITurn(w http.ResponseWriter, r *http.Request) {
	var req aiTurnReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	caller := playerID(s.owner(w, r))
	var (
		res   aiTurnRes
		owner records.Owner
	)
	err := s.store.Update(r.Context(), req.GameID, func(e *store.Entry) error {
		if playerID(e.Owner) != caller {
			return store.ErrNotFound
		}
		if e.Mode != store.ModeMaker {
			return errWrongMode
		}
		if e.Round.Finished {
			return game.ErrRoundFinished
		}
		guess, mem := ai.NextGuess(e.Memory, game.DefaultPalette, s.rnd)
		fb, st, err := e.Round.ApplyGuess(guess)
		if err != nil {
			return err
		}
		e.Memory = ai.UpdateMemory(mem, guess, fb)
		res = aiTurnRes{
			Guess:     guess.Strings(),
			Feedback:  fb[:],
			State:     st,
			Guesses:   e.Round.GuessCount(),
			Remaining: e.Round.Remaining(),
		}
		owner = e.Owner
		return nil
	})
	if err != nil {
		writeGameError(w, err)
		return
	}

	// The human made the code: they win when the AI runs out of guesses.
	s.persistGuess(r.Context(), req.GameID, owner, res.State, res.State == game.StateLost)
	writeJSON(w, http.StatusOK, res)
}

// gameView is the GET /game/{id} payload.
type gameView struct {
	GameID     string     `json:"gameId"`
	Mode       string     `json:"mode"`
	State      game.State `json:"state"`
	MaxGuesses int        `json:"maxGuesses"`
	Turns      []turnView `json:"turns"`
	Secret     []string   `json:"secret,omitempty"`
}
type turnView struct {
	Guess    []string      `json:"guess"`
	Feedback []game.Marker `json:"feedback"`
}

// handleGetGame returns the round history. Breaker-mode feedback stays
// sorted and the secret is hidden until the round is over.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	caller := playerID(s.owner(w, r))
	var v gameView
	err := s.store.Update(r.Context(), chi.URLParam(r, "id"), func(e *store.Entry) error {
		if playerID(e.Owner) != caller {
			return store.ErrNotFound
		}
		v = gameView{
			GameID:     e.Round.ID,
			Mode:       string(e.Mode),
			State:      e.Round.State(),
			MaxGuesses: e.Round.MaxGuesses,
			Turns:      make([]turnView, 0, e.Round.GuessCount()),
		}
		for i, g := range e.Round.Guesses {
			fb := e.Round.Feedback[i]
			if e.Mode != store.ModeMaker {
				fb = fb.Sorted()
			}
			v.Turns = append(v.Turns, turnView{Guess: g.Strings(), Feedback: fb[:]})
		}
		if e.Round.Finished || e.Mode == store.ModeMaker {
			v.Secret = e.Round.Secret.Strings()
		}
		return nil
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// writeGameError maps engine/store errors onto HTTP codes.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, errWrongMode):
		writeError(w, http.StatusConflict, "wrong_mode")
	case errors.Is(err, game.ErrRoundFinished):
		writeError(w, http.StatusConflict, "round_finished")
	case errors.Is(err, game.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("game update")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

// persistGuess records progress (best effort, never fails the request).
func (s *Server) persistGuess(ctx context.Context, id string, owner records.Owner, st game.State, humanWon bool) {
	if s.records == nil {
		return
	}
	if err := s.records.RecordGuess(ctx, id, owner, string(st), st != game.StatePlaying, humanWon); err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("record guess")
	}
}
