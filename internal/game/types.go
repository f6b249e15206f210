// internal/game/types.go
//
// Core type definitions for the Mastermind game engine.
// Defines:
//   - Color: one of the six palette colors.
//   - Code: an ordered row of four pegs (secret codes and guesses alike).
//   - Marker: per-peg result of a guess (exact/color/none).
//   - Feedback: one Marker per guess position.

package game

import "strings"

// CodeLength is the number of pegs in every code and guess.
const CodeLength = 4

// Color is a single peg color. Colors compare by equality only.
type Color string

const (
	Red    Color = "red"
	Green  Color = "green"
	Blue   Color = "blue"
	White  Color = "white"
	Black  Color = "black"
	Yellow Color = "yellow"
)

// Palette is an ordered set of colors a code may be drawn from.
type Palette []Color

// DefaultPalette is the six-color palette used by every game.
var DefaultPalette = Palette{Red, Green, Blue, White, Black, Yellow}

// Contains reports whether c is part of the palette.
func (p Palette) Contains(c Color) bool {
	for _, x := range p {
		if x == c {
			return true
		}
	}
	return false
}

// Strings returns the palette color names in order.
func (p Palette) Strings() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = string(c)
	}
	return out
}

// Code is a secret code or a guess. Position i holds the peg at slot i;
// the empty Color marks an unset peg and never appears in a valid code.
type Code [CodeLength]Color

// Valid reports whether every peg holds a palette color.
func (c Code) Valid() bool {
	for _, x := range c {
		if !DefaultPalette.Contains(x) {
			return false
		}
	}
	return true
}

// String renders the code as space-separated color names.
func (c Code) String() string {
	return strings.Join(c.Strings(), " ")
}

// Strings returns the color names in position order.
func (c Code) Strings() []string {
	out := make([]string, CodeLength)
	for i, x := range c {
		out[i] = string(x)
	}
	return out
}

// Marker represents the evaluation result for a single guess position.
// Possible values:
//   - "exact": right color in the right position.
//   - "color": color occurs in the code at an unmatched position.
//   - "none":  no signal for this peg.
type Marker string

const (
	MarkerExact Marker = "exact"
	MarkerColor Marker = "color"
	MarkerNone  Marker = "none"
)

// Feedback holds one marker per guess position, aligned with the guess
// that produced it.
type Feedback [CodeLength]Marker

// Solved reports whether every slot is an exact match.
func (f Feedback) Solved() bool {
	for _, m := range f {
		if m != MarkerExact {
			return false
		}
	}
	return true
}

// Counts returns the number of exact and color markers.
func (f Feedback) Counts() (exact, color int) {
	for _, m := range f {
		switch m {
		case MarkerExact:
			exact++
		case MarkerColor:
			color++
		}
	}
	return exact, color
}

// Sorted returns the markers with positions discarded: exact markers
// first, then color markers, then none. This is the view shown to a
// human code breaker.
func (f Feedback) Sorted() Feedback {
	exact, color := f.Counts()
	var out Feedback
	for i := range out {
		switch {
		case i < exact:
			out[i] = MarkerExact
		case i < exact+color:
			out[i] = MarkerColor
		default:
			out[i] = MarkerNone
		}
	}
	return out
}
