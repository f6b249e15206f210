// internal/match/match.go
//
// Multi-round bookkeeping for a human-vs-AI match.
// Responsibilities:
//   - Track which side is code breaker and code maker; swap after every round.
//   - Award the round to the breaker (code solved) or the maker (limit hit).
//   - Decide the match: a majority of rounds wins; equal split of all rounds
//     is a draw.

package match

import (
	"errors"
	"fmt"
	"strings"
)

// AIName is the automated player's display name.
const AIName = "Mastermind"

// ErrInvalidRounds is returned for a match with fewer than one round.
var ErrInvalidRounds = errors.New("rounds must be at least 1")

// Role is the side a player takes in a round.
type Role string

const (
	Breaker Role = "breaker"
	Maker   Role = "maker"
)

// ParseRole accepts "b"/"breaker" and "m"/"maker" in any case.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "b", "breaker":
		return Breaker, nil
	case "m", "maker":
		return Maker, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Player is one side of the match.
type Player struct {
	Name  string
	AI    bool
	Score int
}

// Outcome is the match result so far.
type Outcome string

const (
	InProgress Outcome = "in_progress"
	HumanWins  Outcome = "human_wins"
	AIWins     Outcome = "ai_wins"
	Draw       Outcome = "draw"
)

// Match holds scores and roles across rounds.
type Match struct {
	Human   *Player
	AI      *Player
	Rounds  int
	Played  int
	breaker *Player
	maker   *Player
}

// New starts a match where the human takes humanRole in the first round.
func New(human string, humanRole Role, rounds int) (*Match, error) {
	if rounds < 1 {
		return nil, ErrInvalidRounds
	}
	m := &Match{
		Human:  &Player{Name: human},
		AI:     &Player{Name: AIName, AI: true},
		Rounds: rounds,
	}
	switch humanRole {
	case Breaker:
		m.breaker, m.maker = m.Human, m.AI
	case Maker:
		m.breaker, m.maker = m.AI, m.Human
	default:
		return nil, fmt.Errorf("unknown role %q", humanRole)
	}
	return m, nil
}

// Breaker is the player guessing this round.
func (m *Match) Breaker() *Player { return m.breaker }

// Maker is the player who set this round's code.
func (m *Match) Maker() *Player { return m.maker }

// HumanRole is the human's role in the current round.
func (m *Match) HumanRole() Role {
	if m.breaker == m.Human {
		return Breaker
	}
	return Maker
}

// RecordRound scores the finished round and swaps roles. It returns the
// round winner.
func (m *Match) RecordRound(breakerWon bool) *Player {
	winner := m.maker
	if breakerWon {
		winner = m.breaker
	}
	winner.Score++
	m.Played++
	m.breaker, m.maker = m.maker, m.breaker
	return winner
}

// Outcome reports whether the match is decided.
func (m *Match) Outcome() Outcome {
	switch {
	case m.Human.Score > m.Rounds/2:
		return HumanWins
	case m.AI.Score > m.Rounds/2:
		return AIWins
	case m.Human.Score+m.AI.Score == m.Rounds:
		return Draw
	}
	return InProgress
}
