// apps/go-server/internal/store/memory.go
//
// In-memory registry of live game sessions.
//
// Characteristics:
//   - Sessions are keyed by game id in a map guarded by an RWMutex.
//   - Each Session carries its own mutex; handlers hold it for the whole
//     engine call, so calls on one game never interleave.
//   - State is lost on restart; Saves (saves.go) is the durable copy.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/burgundy/apps/go-server/internal/game"
)

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("not found")

// Session is one live game and who owns it.
type Session struct {
	mu   sync.Mutex
	Game *game.Game
	// Player is the signed-in account, empty for guests.
	Player string
	// Owner is Player, or the guest cookie id.
	Owner string
	// Daily is the date key of a daily challenge game.
	Daily string
	// Seed drives the game's dice; a resumed game replays it.
	Seed uint64
}

// NewSession wraps g for the registry.
func NewSession(g *game.Game, player, owner string) *Session {
	return &Session{Game: g, Player: player, Owner: owner}
}

// Lock serializes engine calls on the session's game.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Store keeps sessions by game id.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

func (m *memory) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Game.ID] = s
	return nil
}

func (m *memory) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
