// apps/go-server/internal/store/saves.go
//
// Durable game saves in SQLite (table saves).
// Every successful engine mutation is written here through the engine's
// save hook; a game missing from memory is resumed from its last row.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/burgundy/apps/go-server/internal/game"
)

// Saved is one stored game with its session metadata.
type Saved struct {
	ID        string
	Player    string
	Owner     string
	Daily     string
	Seed      uint64
	State     game.State
	UpdatedAt time.Time
}

type Saves struct{ db *sql.DB }

func NewSaves(db *sql.DB) *Saves { return &Saves{db: db} }

// Put upserts a save. UpdatedAt is set to now.
func (s *Saves) Put(ctx context.Context, sv Saved) error {
	raw, err := json.Marshal(sv.State)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	var player any
	if sv.Player != "" {
		player = sv.Player
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saves(id, map_id, player_id, owner, daily, seed, state, updated_at) VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			state=excluded.state,
			updated_at=excluded.updated_at`,
		sv.ID, sv.State.MapID, player, sv.Owner, sv.Daily, int64(sv.Seed), string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Load returns the last save of game id, or ErrNotFound.
func (s *Saves) Load(ctx context.Context, id string) (*Saved, error) {
	var (
		out     Saved
		seed    int64
		raw     string
		updated string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, COALESCE(player_id,''), owner, daily, seed, state, updated_at FROM saves WHERE id=?`, id,
	).Scan(&out.ID, &out.Player, &out.Owner, &out.Daily, &seed, &raw, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// seeds are stored as their int64 bit pattern
	out.Seed = uint64(seed)
	if err := json.Unmarshal([]byte(raw), &out.State); err != nil {
		return nil, fmt.Errorf("%w: %v", game.ErrCorruptState, err)
	}
	out.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &out, nil
}

// Delete removes a save; missing rows are not an error.
func (s *Saves) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE id=?`, id)
	return err
}
