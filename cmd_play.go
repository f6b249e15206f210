package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/config"
	"github.com/robalobadob/mastermind/internal/random"
	"github.com/robalobadob/mastermind/internal/terminal"
)

var playRounds int

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a match against the computer in the terminal",
	Long: `Play a match of Mastermind in the terminal.

Pick code breaker (B) or code maker (M); roles swap every round and the
first player past half the rounds wins. Colors are typed by name, for
example: red green blue white`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&playRounds, "rounds", 0, "Number of rounds (default: ROUNDS; ask when 0)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := playOptions(cfg, playRounds, cmd.Flags().Changed("rounds"))
	s := terminal.New(cmd.InOrStdin(), cmd.OutOrStdout(), random.New(), opts)
	_, err = s.Run(ctx)
	return err
}

// playOptions prefers --rounds when given, else the configured ROUNDS.
func playOptions(cfg config.Config, flagRounds int, flagSet bool) terminal.Options {
	rounds := cfg.Rounds
	if flagSet {
		rounds = flagRounds
	}
	return terminal.Options{
		Rounds:     rounds,
		MaxGuesses: cfg.MaxGuesses,
		ThinkDelay: cfg.ThinkDelay,
	}
}
