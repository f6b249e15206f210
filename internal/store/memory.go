// internal/store/memory.go
//
// In-memory store for games in progress.
// Each entry pairs the round with the automated breaker's memory, so the
// AI's knowledge lives exactly as long as its round.
//
// Characteristics:
//   - Concurrency-safe via RWMutex; Update runs its callback under the lock.
//   - Entries idle past a cutoff are dropped by Prune.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/mastermind/internal/ai"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/records"
)

// ErrNotFound is returned for unknown game ids.
var ErrNotFound = errors.New("not found")

// Mode says which side the human plays.
type Mode string

const (
	// ModeBreaker: the AI made the code, the human guesses.
	ModeBreaker Mode = "breaker"
	// ModeMaker: the human made the code, the AI guesses.
	ModeMaker Mode = "maker"
	// ModeDaily: the human guesses the code of the day.
	ModeDaily Mode = "daily"
)

// Entry is one active game.
type Entry struct {
	Round   *game.Round
	Mode    Mode
	Memory  ai.Memory
	Owner   records.Owner
	Date    string // daily games only
	Started time.Time
	Updated time.Time // set by the store on Save and Update
}

// Store defines the persistence interface for active games.
type Store interface {
	// Save persists or replaces an entry, keyed by Round.ID.
	Save(ctx context.Context, e *Entry) error

	// Get retrieves an entry by game id.
	Get(ctx context.Context, id string) (*Entry, error)

	// Update runs fn on the entry with exclusive access.
	Update(ctx context.Context, id string, fn func(e *Entry) error) error

	// Delete drops an entry; unknown ids are ignored.
	Delete(ctx context.Context, id string) error

	// Claim hands every entry owned by anonID over to userID and returns
	// how many moved.
	Claim(ctx context.Context, anonID, userID string) (int, error)

	// Prune drops entries not updated since before and returns how many
	// were removed.
	Prune(ctx context.Context, before time.Time) (int, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex
	games map[string]*Entry
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*Entry)}
}

func (m *memory) Save(ctx context.Context, e *Entry) error {
	if e == nil || e.Round == nil {
		return errors.New("store: entry without round")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e.Updated = time.Now()
	m.games[e.Round.ID] = e
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.games[id]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn func(e *Entry) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.games[id]
	if !ok {
		return ErrNotFound
	}
	e.Updated = time.Now()
	return fn(e)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

func (m *memory) Claim(ctx context.Context, anonID, userID string) (int, error) {
	if anonID == "" || userID == "" {
		return 0, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.games {
		if e.Owner.UserID == "" && e.Owner.AnonID == anonID {
			e.Owner = records.Owner{UserID: userID}
			n++
		}
	}
	return n, nil
}

func (m *memory) Prune(ctx context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.games {
		if e.Updated.Before(before) {
			delete(m.games, id)
			n++
		}
	}
	return n, nil
}
