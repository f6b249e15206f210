package ai

import (
	"math/rand"
	"testing"

	"github.com/robalobadob/mastermind/internal/game"
)

// script returns its values in order (modulo n), repeating from the start.
type script struct {
	vals []int
	i    int
}

func (s *script) Intn(n int) int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

func TestUpdateMemory(t *testing.T) {
	guess := game.Code{game.Red, game.Green, game.Blue, game.White}
	fb := game.Feedback{game.MarkerExact, game.MarkerColor, game.MarkerNone, game.MarkerColor}
	before := Memory{MustInclude: []game.Color{game.Yellow}}

	got := UpdateMemory(before, guess, fb)

	if got.Confirmed[0] != game.Red {
		t.Fatalf("Confirmed[0] = %q, want red", got.Confirmed[0])
	}
	for i := 1; i < game.CodeLength; i++ {
		if got.IsConfirmed(i) {
			t.Fatalf("position %d confirmed unexpectedly: %q", i, got.Confirmed[i])
		}
	}
	want := []game.Color{game.Yellow, game.Green, game.White}
	if len(got.MustInclude) != len(want) {
		t.Fatalf("MustInclude = %v, want %v", got.MustInclude, want)
	}
	for i := range want {
		if got.MustInclude[i] != want[i] {
			t.Fatalf("MustInclude = %v, want %v", got.MustInclude, want)
		}
	}
	if len(before.MustInclude) != 1 || before.IsConfirmed(0) {
		t.Fatalf("input memory mutated: %+v", before)
	}
}

func TestNextGuessOrderOfPreference(t *testing.T) {
	mem := Memory{
		Confirmed:   [game.CodeLength]game.Color{game.Black, "", "", ""},
		MustInclude: []game.Color{game.Green, game.Blue},
	}
	// Draw 1 picks Blue from [Green Blue], draw 2 picks Green from [Green],
	// draw 3 picks palette index 5 (yellow).
	r := &script{vals: []int{1, 0, 5}}

	guess, next := NextGuess(mem, game.DefaultPalette, r)

	want := game.Code{game.Black, game.Blue, game.Green, game.Yellow}
	if guess != want {
		t.Fatalf("guess = %v, want %v", guess, want)
	}
	if len(next.MustInclude) != 0 {
		t.Fatalf("MustInclude not consumed: %v", next.MustInclude)
	}
	if len(mem.MustInclude) != 2 {
		t.Fatalf("input memory mutated: %v", mem.MustInclude)
	}
	if next.Confirmed != mem.Confirmed {
		t.Fatalf("confirmed changed: %v", next.Confirmed)
	}
}

func TestNextGuessEmptyMemoryIsRandom(t *testing.T) {
	r := &script{vals: []int{0, 1, 2, 3}}
	guess, next := NextGuess(Memory{}, game.DefaultPalette, r)
	want := game.Code{game.Red, game.Green, game.Blue, game.White}
	if guess != want {
		t.Fatalf("guess = %v, want %v", guess, want)
	}
	if len(next.MustInclude) != 0 || next.IsConfirmed(0) {
		t.Fatalf("memory changed: %+v", next)
	}
}

func TestConfirmedPositionIsAlwaysRepeated(t *testing.T) {
	secret := game.Code{game.Yellow, game.Red, game.Red, game.Black}
	rnd := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		var mem Memory
		pinned := map[int]game.Color{}
		for turn := 0; turn < game.DefaultMaxGuesses; turn++ {
			var guess game.Code
			guess, mem = NextGuess(mem, game.DefaultPalette, rnd)
			for i, c := range pinned {
				if guess[i] != c {
					t.Fatalf("trial %d turn %d: position %d = %q, want pinned %q", trial, turn, i, guess[i], c)
				}
			}
			fb := game.Evaluate(secret, guess)
			mem = UpdateMemory(mem, guess, fb)
			for i, m := range fb {
				if m == game.MarkerExact {
					pinned[i] = guess[i]
				}
			}
			if fb.Solved() {
				break
			}
		}
	}
}

func TestColorMatchIsTriedNextTurn(t *testing.T) {
	secret := game.Code{game.Red, game.Green, game.Blue, game.White}
	guess := game.Code{game.Green, game.Yellow, game.Yellow, game.Yellow}
	fb := game.Evaluate(secret, guess)
	if fb[0] != game.MarkerColor {
		t.Fatalf("setup: feedback = %v", fb)
	}

	mem := UpdateMemory(Memory{}, guess, fb)
	if len(mem.MustInclude) != 1 || mem.MustInclude[0] != game.Green {
		t.Fatalf("MustInclude = %v, want [green]", mem.MustInclude)
	}

	next, after := NextGuess(mem, game.DefaultPalette, rand.New(rand.NewSource(1)))
	found := false
	for _, c := range next {
		if c == game.Green {
			found = true
		}
	}
	if !found {
		t.Fatalf("green not tried in %v", next)
	}
	if len(after.MustInclude) != 0 {
		t.Fatalf("green not consumed: %v", after.MustInclude)
	}
}

func TestMustIncludeKeptWhileNoPositionIsFree(t *testing.T) {
	mem := Memory{
		Confirmed:   [game.CodeLength]game.Color{game.Red, game.Red, game.Red, game.Red},
		MustInclude: []game.Color{game.Blue},
	}
	guess, next := NextGuess(mem, game.DefaultPalette, &script{vals: []int{0}})
	if guess != (game.Code{game.Red, game.Red, game.Red, game.Red}) {
		t.Fatalf("guess = %v", guess)
	}
	if len(next.MustInclude) != 1 {
		t.Fatalf("MustInclude = %v, want unchanged", next.MustInclude)
	}
}

func TestResetClearsMemory(t *testing.T) {
	mem := Memory{
		Confirmed:   [game.CodeLength]game.Color{game.Red},
		MustInclude: []game.Color{game.Blue},
	}
	if got := mem.Reset(); got.IsConfirmed(0) || len(got.MustInclude) != 0 {
		t.Fatalf("Reset() = %+v", got)
	}
}
