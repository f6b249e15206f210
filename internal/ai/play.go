package ai

import "github.com/robalobadob/mastermind/internal/game"

// Turn is one guess of a headless round.
type Turn struct {
	Guess    game.Code
	Feedback game.Feedback
}

// Result summarises a headless round.
type Result struct {
	Won     bool
	Guesses int
	History []Turn
}

// PlayRound lets the breaker attack secret until it solves the code or
// maxGuesses runs out. Memory starts empty and is discarded afterwards.
func PlayRound(secret game.Code, maxGuesses int, r game.RandSource) (Result, error) {
	round, err := game.NewRound(secret, maxGuesses)
	if err != nil {
		return Result{}, err
	}

	var (
		mem Memory
		res Result
	)
	for !round.Finished {
		var guess game.Code
		guess, mem = NextGuess(mem, game.DefaultPalette, r)
		fb, _, err := round.ApplyGuess(guess)
		if err != nil {
			return res, err
		}
		mem = UpdateMemory(mem, guess, fb)
		res.History = append(res.History, Turn{Guess: guess, Feedback: fb})
	}
	res.Won = round.Won
	res.Guesses = round.GuessCount()
	return res, nil
}
