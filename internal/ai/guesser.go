package ai

import "github.com/robalobadob/mastermind/internal/game"

// NextGuess builds the next guess from mem, filling positions in order:
//   - a confirmed position repeats its confirmed color;
//   - otherwise, while MustInclude is non-empty, one entry is removed at
//     random and placed here;
//   - otherwise a color is drawn uniformly from palette.
//
// The returned Memory has the consumed MustInclude entries removed; mem
// itself is left untouched.
func NextGuess(mem Memory, palette game.Palette, r game.RandSource) (game.Code, Memory) {
	out := mem.clone()
	var guess game.Code
	for i := range guess {
		switch {
		case out.IsConfirmed(i):
			guess[i] = out.Confirmed[i]
		case len(out.MustInclude) > 0:
			guess[i] = out.take(r.Intn(len(out.MustInclude)))
		default:
			guess[i] = game.RandomColor(palette, r)
		}
	}
	return guess, out
}

// take removes and returns MustInclude[j].
func (m *Memory) take(j int) game.Color {
	c := m.MustInclude[j]
	m.MustInclude = append(m.MustInclude[:j], m.MustInclude[j+1:]...)
	return c
}
