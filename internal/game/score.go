package game

// Evaluate scores guess against secret and returns one marker per guess
// position.
//
// Pass 1:
//   - Mark every position whose colors agree as exact.
//
// Pass 2:
//   - For each remaining position with guess color c: award a color marker
//     when the secret holds more c pegs than pass 1 matched exactly
//     (counted across the whole guess); otherwise none.
//
// Pass 2 reads the exact-match counts only after pass 1 has finished.
func Evaluate(secret, guess Code) Feedback {
	var fb Feedback

	for i := 0; i < CodeLength; i++ {
		if guess[i] == secret[i] {
			fb[i] = MarkerExact
		}
	}

	for i := 0; i < CodeLength; i++ {
		if fb[i] == MarkerExact {
			continue
		}
		c := guess[i]
		if occurrences(secret, c) > exactMatchesOf(fb, guess, c) {
			fb[i] = MarkerColor
		} else {
			fb[i] = MarkerNone
		}
	}
	return fb
}

// occurrences counts the pegs of color c in code.
func occurrences(code Code, c Color) int {
	n := 0
	for _, x := range code {
		if x == c {
			n++
		}
	}
	return n
}

// exactMatchesOf counts positions already marked exact whose guess color is c.
func exactMatchesOf(fb Feedback, guess Code, c Color) int {
	n := 0
	for i, m := range fb {
		if m == MarkerExact && guess[i] == c {
			n++
		}
	}
	return n
}
