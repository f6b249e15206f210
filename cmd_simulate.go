package main

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/ai"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/random"
)

var (
	simRounds     int
	simMaxGuesses int
	simSeed       int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Measure the automated breaker against random codes",
	Long: `Play many headless rounds of the automated breaker against random
secret codes and report its win rate.

Example:
  mastermind simulate --rounds 10000 --seed 42`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simRounds, "rounds", 1000, "Rounds to play")
	simulateCmd.Flags().IntVar(&simMaxGuesses, "max-guesses", game.DefaultMaxGuesses, "Guess limit per round")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "Random seed (0 picks one)")
	rootCmd.AddCommand(simulateCmd)
}

// simStats aggregates headless rounds.
type simStats struct {
	Rounds   int
	Wins     int
	Guesses  int // summed over won rounds
	MostUsed int
}

func (s simStats) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Rounds)
}

func (s simStats) AvgGuesses() float64 {
	if s.Wins == 0 {
		return 0
	}
	return float64(s.Guesses) / float64(s.Wins)
}

func simulate(rounds, maxGuesses int, r game.RandSource) (simStats, error) {
	st := simStats{Rounds: rounds}
	for i := 0; i < rounds; i++ {
		res, err := ai.PlayRound(game.RandomCode(r), maxGuesses, r)
		if err != nil {
			return st, fmt.Errorf("round %d: %w", i+1, err)
		}
		if res.Won {
			st.Wins++
			st.Guesses += res.Guesses
			st.MostUsed = max(st.MostUsed, res.Guesses)
		}
	}
	return st, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simRounds < 1 {
		return fmt.Errorf("--rounds must be >= 1")
	}
	seed := simSeed
	if seed == 0 {
		var err error
		if seed, err = random.NewSeed(); err != nil {
			return err
		}
	}

	st, err := simulate(simRounds, simMaxGuesses, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}
	log.Debug().Int64("seed", seed).Int("wins", st.Wins).Msg("simulation done")

	fmt.Fprintf(cmd.OutOrStdout(), "rounds:      %d\nwins:        %d (%.1f%%)\navg guesses: %.2f\nmost used:   %d\nseed:        %d\n",
		st.Rounds, st.Wins, 100*st.WinRate(), st.AvgGuesses(), st.MostUsed, seed)
	return nil
}
