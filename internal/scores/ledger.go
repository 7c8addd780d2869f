// apps/go-server/internal/scores/ledger.go
//
// Bounded in-memory archive of finished games.
// Responsibilities:
//   - Keep the most recent finished games (cap Capacity, oldest dropped first).
//   - List them newest first, or best first for a high-score table.
//
// Notes:
//   - Safe for concurrent use; the engine's game-over hook may fire from any
//     request goroutine.

package scores

import (
	"sort"
	"sync"
	"time"
)

// Capacity is how many finished games the archive keeps.
const Capacity = 10

// HighScore is one archived result.
type HighScore struct {
	Score  int       `json:"score"`
	At     time.Time `json:"at"`
	MapID  string    `json:"map"`
	Player string    `json:"player,omitempty"`
}

// Ledger holds the last Capacity results, newest first.
type Ledger struct {
	mu      sync.Mutex
	entries []HighScore
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger { return &Ledger{} }

// Add records a result, dropping the oldest entry past Capacity.
func (l *Ledger) Add(h HighScore) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]HighScore{h}, l.entries...)
	if len(l.entries) > Capacity {
		l.entries = l.entries[:Capacity]
	}
}

// Recent lists results newest first.
func (l *Ledger) Recent() []HighScore {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]HighScore(nil), l.entries...)
}

// Top lists results best first; equal scores keep newest first.
func (l *Ledger) Top() []HighScore {
	out := l.Recent()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Len is the number of archived results.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
