package game

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is returned for codes of the wrong length or with colors
// outside the palette.
var ErrInvalidInput = errors.New("invalid input")

// RandSource is the randomness a player needs. *math/rand.Rand satisfies it.
type RandSource interface {
	Intn(n int) int
}

// ParseColor maps a color name (any case, surrounding space ignored) to a
// palette Color.
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if !DefaultPalette.Contains(c) {
		return "", fmt.Errorf("%w: unknown color %q", ErrInvalidInput, s)
	}
	return c, nil
}

// ParseCode builds a Code from exactly CodeLength color names.
func ParseCode(names []string) (Code, error) {
	var code Code
	if len(names) != CodeLength {
		return code, fmt.Errorf("%w: want %d colors, got %d", ErrInvalidInput, CodeLength, len(names))
	}
	for i, n := range names {
		c, err := ParseColor(n)
		if err != nil {
			return Code{}, err
		}
		code[i] = c
	}
	return code, nil
}

// ParseCodeString parses whitespace-separated color names, e.g.
// "red green blue white".
func ParseCodeString(s string) (Code, error) {
	return ParseCode(strings.Fields(s))
}

// RandomColor draws a color uniformly from p.
func RandomColor(p Palette, r RandSource) Color {
	return p[r.Intn(len(p))]
}

// RandomCode draws every peg uniformly from the default palette.
// Repeated colors are allowed.
func RandomCode(r RandSource) Code {
	var code Code
	for i := range code {
		code[i] = RandomColor(DefaultPalette, r)
	}
	return code
}
