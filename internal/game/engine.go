// internal/game/engine.go
//
// Round engine for a single Mastermind code-breaking round.
// Responsibilities:
//   - Hold the secret code and the guess limit (default 12).
//   - Validate and score guesses with Evaluate.
//   - Track state transitions: playing → won/lost.
//
// Notes:
//   - "won" means the code breaker solved the code; "lost" means the guess
//     limit ran out, which is a victory for the code maker.
//   - randomID() is a compact hex identifier for correlating server state.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// DefaultMaxGuesses is the number of guesses a breaker gets per round.
const DefaultMaxGuesses = 12

// ErrRoundFinished is returned when guessing on a round that is over.
var ErrRoundFinished = errors.New("round finished")

// State is the coarse round state.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Round holds the state of a single code-breaking round.
type Round struct {
	ID         string     // Unique round identifier (random hex string).
	Secret     Code       // The code being broken.
	MaxGuesses int        // Guess limit for the breaker.
	Guesses    []Code     // Guesses made so far.
	Feedback   []Feedback // Feedback per guess, position-aligned.
	Finished   bool       // True once the round is over.
	Won        bool       // True if the breaker solved the code.
}

// NewRound constructs a round for secret. A non-positive maxGuesses selects
// DefaultMaxGuesses.
func NewRound(secret Code, maxGuesses int) (*Round, error) {
	if !secret.Valid() {
		return nil, fmt.Errorf("%w: secret %q", ErrInvalidInput, secret.String())
	}
	if maxGuesses <= 0 {
		maxGuesses = DefaultMaxGuesses
	}
	return &Round{
		ID:         randomID(),
		Secret:     secret,
		MaxGuesses: maxGuesses,
	}, nil
}

// ApplyGuess validates and scores a guess, mutating the round state.
// Returns the position-aligned feedback and the resulting state.
//
// State transitions:
//   - All markers exact → Finished, Won.
//   - Else if the guess count reaches MaxGuesses → Finished (maker wins).
func (r *Round) ApplyGuess(guess Code) (Feedback, State, error) {
	if r.Finished {
		return Feedback{}, r.State(), ErrRoundFinished
	}
	if !guess.Valid() {
		return Feedback{}, r.State(), fmt.Errorf("%w: guess %q", ErrInvalidInput, guess.String())
	}

	fb := Evaluate(r.Secret, guess)
	r.Guesses = append(r.Guesses, guess)
	r.Feedback = append(r.Feedback, fb)

	if fb.Solved() {
		r.Finished, r.Won = true, true
	} else if len(r.Guesses) >= r.MaxGuesses {
		r.Finished = true
	}
	return fb, r.State(), nil
}

// State reports the current round state.
func (r *Round) State() State {
	if r.Finished {
		if r.Won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}

// GuessCount is the number of guesses applied so far.
func (r *Round) GuessCount() int { return len(r.Guesses) }

// Remaining is the number of guesses left before the limit.
func (r *Round) Remaining() int {
	if n := r.MaxGuesses - len(r.Guesses); n > 0 {
		return n
	}
	return 0
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
