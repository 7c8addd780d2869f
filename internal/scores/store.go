// apps/go-server/internal/scores/store.go
//
// SQLite-backed high-score archive (table high_scores).
// Responsibilities:
//   - Insert finished games, optionally tied to a player.
//   - Recent results and per-map leaderboards.
//   - Prune to the most recent Capacity rows.

package scores

import (
	"context"
	"database/sql"
	"time"
)

// tsLayout is fixed-width so created_at sorts as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Insert archives one result.
func (s *Store) Insert(ctx context.Context, h HighScore) error {
	var player any
	if h.Player != "" {
		player = h.Player
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO high_scores(player_id, map_id, score, created_at) VALUES(?,?,?,?)`,
		player, h.MapID, h.Score, h.At.UTC().Format(tsLayout),
	)
	return err
}

// Recent returns up to limit results, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]HighScore, error) {
	if limit <= 0 {
		limit = Capacity
	}
	return s.query(ctx, `
		SELECT score, created_at, map_id, COALESCE(player_id,'')
		FROM high_scores
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
}

// Leaderboard returns the best results, optionally for one map.
func (s *Store) Leaderboard(ctx context.Context, mapID string, limit int) ([]HighScore, error) {
	if limit <= 0 {
		limit = Capacity
	}
	if mapID == "" {
		return s.query(ctx, `
			SELECT score, created_at, map_id, COALESCE(player_id,'')
			FROM high_scores
			ORDER BY score DESC, created_at DESC
			LIMIT ?`, limit)
	}
	return s.query(ctx, `
		SELECT score, created_at, map_id, COALESCE(player_id,'')
		FROM high_scores
		WHERE map_id=?
		ORDER BY score DESC, created_at DESC
		LIMIT ?`, mapID, limit)
}

// Prune deletes everything but the keep most recent rows.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM high_scores
		WHERE id NOT IN (
			SELECT id FROM high_scores ORDER BY created_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]HighScore, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []HighScore{}
	for rows.Next() {
		var h HighScore
		var at string
		if err := rows.Scan(&h.Score, &at, &h.MapID, &h.Player); err != nil {
			return nil, err
		}
		h.At, _ = time.Parse(tsLayout, at)
		out = append(out, h)
	}
	return out, rows.Err()
}
