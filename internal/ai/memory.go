// internal/ai/memory.go
//
// Cross-turn memory for the automated code breaker.
// Memory is a plain value: the caller owns it, passes it in, and keeps the
// returned copy. A new round starts from the zero Memory.

package ai

import "github.com/robalobadob/mastermind/internal/game"

// Memory is what the breaker has learned during the current round.
type Memory struct {
	// Confirmed holds the color proven (by an exact marker) to sit at each
	// position; the empty Color means unknown.
	Confirmed [game.CodeLength]game.Color
	// MustInclude is a multiset of colors known (by color markers) to be in
	// the code but not yet placed.
	MustInclude []game.Color
}

// Reset returns an empty memory for a new round.
func (m Memory) Reset() Memory { return Memory{} }

// IsConfirmed reports whether position i is known.
func (m Memory) IsConfirmed(i int) bool { return m.Confirmed[i] != "" }

// clone copies the MustInclude backing array so callers never share it.
func (m Memory) clone() Memory {
	out := m
	out.MustInclude = append([]game.Color(nil), m.MustInclude...)
	return out
}

// UpdateMemory folds the feedback for guess into mem. Exact markers pin the
// guessed color to that position for the rest of the round; color markers
// add the guessed color to MustInclude; none markers change nothing.
func UpdateMemory(mem Memory, guess game.Code, fb game.Feedback) Memory {
	out := mem.clone()
	for i, m := range fb {
		switch m {
		case game.MarkerExact:
			out.Confirmed[i] = guess[i]
		case game.MarkerColor:
			out.MustInclude = append(out.MustInclude, guess[i])
		}
	}
	return out
}
