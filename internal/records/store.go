// internal/records/store.go
//
// Durable history for users and games.
// Responsibilities:
//   - User accounts (bcrypt hashes via the auth package) and win/streak stats.
//   - One row per game, owned by a user or an anonymous cookie id.
//   - Moving anonymous history onto an account after signup/login.

package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/mastermind/internal/auth"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username taken")
)

// User matches the users table.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	GamesPlayed  int       `json:"gamesPlayed"`
	Wins         int       `json:"wins"`
	Streak       int       `json:"streak"`
}

// Owner identifies who a game belongs to; exactly one field is set.
type Owner struct {
	UserID string
	AnonID string
}

func (o Owner) clause() (string, any) {
	if o.UserID != "" {
		return `user_id=?`, o.UserID
	}
	return `anonymous_id=?`, o.AnonID
}

// GameRow is a history row.
type GameRow struct {
	ID         string `json:"id"`
	Mode       string `json:"mode"`
	Status     string `json:"status"`
	Guesses    int    `json:"guesses"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

// Store wraps the database handle.
type Store struct{ db *sql.DB }

// NewStore binds a Store to db. Run Migrate first.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// ------------------------------- users -------------------------------------

// CreateUser validates input, checks uniqueness, hashes the password and
// inserts the row.
func (s *Store) CreateUser(ctx context.Context, username, pw string) (*User, error) {
	username = auth.NormalizeUsername(username)
	if err := auth.ValidateSignup(username, pw); err != nil {
		return nil, err
	}
	if _, err := s.FindUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	h, err := auth.HashPassword(pw)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{ID: NewID(), Username: username, PasswordHash: h, CreatedAt: time.Now().UTC()}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// FindUserByUsername looks a user up case-insensitively.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, wins, streak
	                                          FROM users WHERE lower(username)=lower(?)`, username))
}

// FindUserByID looks a user up by id.
func (s *Store) FindUserByID(ctx context.Context, id string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, wins, streak
	                                          FROM users WHERE id=?`, id))
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.GamesPlayed, &u.Wins, &u.Streak); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// ------------------------------- games -------------------------------------

// InsertGame records a newly started game.
func (s *Store) InsertGame(ctx context.Context, id, mode string, o Owner) error {
	var userID, anonID any
	if o.UserID != "" {
		userID = o.UserID
	} else {
		anonID = o.AnonID
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO games (id, user_id, anonymous_id, mode, status, started_at, guesses)
	                                 VALUES (?,?,?,?,?,?,0)`,
		id, userID, anonID, mode, "playing", time.Now().UTC().Format(time.RFC3339))
	return err
}

// RecordGuess bumps the guess counter and, once the round is over, stores
// the final status and updates the user's stats in the same transaction.
// humanWon is only consulted when finished is true. ErrNotFound means no
// game id belongs to o.
func (s *Store) RecordGuess(ctx context.Context, id string, o Owner, status string, finished, humanWon bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	where, arg := o.clause()
	res, err := tx.ExecContext(ctx, `UPDATE games SET guesses = guesses + 1, status=? WHERE id=? AND `+where,
		status, id, arg)
	if err != nil {
		return fmt.Errorf("update guesses: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("update guesses: %w", err)
	} else if n == 0 {
		return fmt.Errorf("game %s for owner %+v: %w", id, o, ErrNotFound)
	}
	if finished {
		if _, err := tx.ExecContext(ctx, `UPDATE games SET finished_at=? WHERE id=? AND `+where,
			time.Now().UTC().Format(time.RFC3339), id, arg); err != nil {
			return fmt.Errorf("finish game: %w", err)
		}
		if o.UserID != "" {
			if err := bumpStats(ctx, tx, o.UserID, humanWon); err != nil {
				return fmt.Errorf("bump stats: %w", err)
			}
		}
	}
	return tx.Commit()
}

// bumpStats increments games played and updates wins and streak.
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, won bool) error {
	var gp, wins, streak int
	if err := tx.QueryRowContext(ctx, `SELECT games_played, wins, streak FROM users WHERE id=?`, userID).
		Scan(&gp, &wins, &streak); err != nil {
		return err
	}
	gp++
	if won {
		wins++
		streak++
	} else {
		streak = 0
	}
	_, err := tx.ExecContext(ctx, `UPDATE users SET games_played=?, wins=?, streak=? WHERE id=?`, gp, wins, streak, userID)
	return err
}

// RecentGames lists a user's latest games, newest first.
func (s *Store) RecentGames(ctx context.Context, userID string, limit int) ([]GameRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, mode, status, guesses, started_at, COALESCE(finished_at,'')
	                                     FROM games WHERE user_id=? ORDER BY started_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameRow{}
	for rows.Next() {
		var g GameRow
		if err := rows.Scan(&g.ID, &g.Mode, &g.Status, &g.Guesses, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ClaimAnonGames transfers anonymous games to a user account.
func (s *Store) ClaimAnonGames(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	return err
}
