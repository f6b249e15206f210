// Package terminal runs an interactive human-vs-AI match over plain text.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/ai"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/match"
)

// Options tune a session. Zero Rounds means ask the player.
type Options struct {
	Rounds     int
	MaxGuesses int
	ThinkDelay time.Duration
}

// Session is one interactive match.
type Session struct {
	in    *bufio.Scanner
	out   io.Writer
	rnd   game.RandSource
	opts  Options
	sleep func(context.Context, time.Duration) error
}

// New builds a session reading answers from in and writing prompts to out.
func New(in io.Reader, out io.Writer, rnd game.RandSource, opts Options) *Session {
	if opts.MaxGuesses <= 0 {
		opts.MaxGuesses = game.DefaultMaxGuesses
	}
	return &Session{in: bufio.NewScanner(in), out: out, rnd: rnd, opts: opts, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run plays a full match and returns its outcome. It stops early with an
// error when input ends or ctx is cancelled.
func (s *Session) Run(ctx context.Context) (match.Outcome, error) {
	name, err := s.ask("Welcome to Mastermind! What is your name?", func(line string) error {
		if line == "" {
			return fmt.Errorf("name must not be empty")
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	var role match.Role
	if _, err := s.ask("Code breaker or maker? B or M", func(line string) error {
		r, perr := match.ParseRole(line)
		role = r
		return perr
	}); err != nil {
		return "", err
	}

	rounds := s.opts.Rounds
	if rounds <= 0 {
		if _, err := s.ask("How many rounds?", func(line string) error {
			n, err := strconv.Atoi(line)
			if err != nil || n < 1 {
				return fmt.Errorf("enter a whole number of rounds, at least 1")
			}
			rounds = n
			return nil
		}); err != nil {
			return "", err
		}
	}

	m, err := match.New(name, role, rounds)
	if err != nil {
		return "", err
	}

	for m.Outcome() == match.InProgress {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		s.printf("\nRound %d of %d: %s breaks, %s makes.\n", m.Played+1, m.Rounds, m.Breaker().Name, m.Maker().Name)
		won, err := s.playRound(ctx, m)
		if err != nil {
			return "", err
		}
		if won {
			s.printf("Code breaker wins!\n")
		} else {
			s.printf("Code maker wins!\n")
		}
		winner := m.RecordRound(won)
		log.Debug().Str("winner", winner.Name).Int("played", m.Played).Msg("round over")
		s.printf("Rounds: %d\n%s's score: %d\n%s's score: %d\n", m.Rounds, m.Human.Name, m.Human.Score, m.AI.Name, m.AI.Score)
	}

	out := m.Outcome()
	s.printf("\nGame over!\n")
	switch out {
	case match.HumanWins:
		s.printf("%s wins! %d/%d rounds\n", m.Human.Name, m.Human.Score, m.Rounds)
	case match.AIWins:
		s.printf("%s wins! %d/%d rounds\n", m.AI.Name, m.AI.Score, m.Rounds)
	default:
		s.printf("Draw!\n")
	}
	return out, nil
}

// playRound runs one round and reports whether the breaker solved the code.
// The AI's memory is created here and dropped with the round.
func (s *Session) playRound(ctx context.Context, m *match.Match) (bool, error) {
	var secret game.Code
	if m.Maker().AI {
		secret = game.RandomCode(s.rnd)
		s.printf("%s has made a secret code.\n", m.Maker().Name)
	} else {
		var err error
		if secret, err = s.askCode("Make a secret code!"); err != nil {
			return false, err
		}
	}

	round, err := game.NewRound(secret, s.opts.MaxGuesses)
	if err != nil {
		return false, err
	}

	var mem ai.Memory
	for !round.Finished {
		s.printf("Guess %d of %d\n", round.GuessCount()+1, round.MaxGuesses)

		var guess game.Code
		if m.Breaker().AI {
			s.printf("%s is thinking...\n", m.Breaker().Name)
			if err := s.sleep(ctx, s.opts.ThinkDelay); err != nil {
				return false, err
			}
			guess, mem = ai.NextGuess(mem, game.DefaultPalette, s.rnd)
		} else if guess, err = s.askCode("Your guess?"); err != nil {
			return false, err
		}

		fb, _, err := round.ApplyGuess(guess)
		if err != nil {
			return false, err
		}
		if m.Breaker().AI {
			mem = ai.UpdateMemory(mem, guess, fb)
		} else {
			fb = fb.Sorted()
		}
		s.printf("%s\nResponse:\n%s\n", pegs(guess), markers(fb))
	}
	if !round.Won {
		s.printf("The code was %s\n", pegs(round.Secret))
	}
	return round.Won, nil
}

func (s *Session) askCode(prompt string) (game.Code, error) {
	var code game.Code
	_, err := s.ask(fmt.Sprintf("%s Pick %d colors.\nColors: %s", prompt, game.CodeLength,
		strings.Join(game.DefaultPalette.Strings(), " ")), func(line string) error {
		c, err := game.ParseCodeString(line)
		if err != nil {
			return err
		}
		code = c
		return nil
	})
	return code, err
}

// ask prints prompt and reads lines until check accepts one.
func (s *Session) ask(prompt string, check func(string) error) (string, error) {
	s.printf("%s\n", prompt)
	for {
		if !s.in.Scan() {
			if err := s.in.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		line := strings.TrimSpace(s.in.Text())
		if err := check(line); err != nil {
			s.printf("Invalid input: %v\n", err)
			continue
		}
		return line, nil
	}
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func pegs(c game.Code) string {
	parts := make([]string, len(c))
	for i, x := range c {
		parts[i] = "(" + string(x) + ")"
	}
	return strings.Join(parts, " ")
}

func markers(fb game.Feedback) string {
	parts := make([]string, len(fb))
	for i, m := range fb {
		switch m {
		case game.MarkerExact:
			parts[i] = "(black)"
		case game.MarkerColor:
			parts[i] = "(white)"
		default:
			parts[i] = "*MISS*"
		}
	}
	return strings.Join(parts, " ")
}
