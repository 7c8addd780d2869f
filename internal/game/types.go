// apps/go-server/internal/game/types.go
//
// Core type definitions for the dice placement engine.
// Defines:
//   - Value: what a cell holds (unset, 1..6, or the start marker).
//   - Dice / DiceAvailable: the current roll and which faces are still unused.
//   - Resources: workers, monks, silver and commodities held by the player.
//   - State: every mutable field of a game; copied whole for undo and saves.

package game

import (
	"time"

	"github.com/robalobadob/burgundy/apps/go-server/internal/hexgrid"
)

// Value is the content of a cell.
type Value int8

const (
	Unset       Value = 0
	StartMarker Value = -1 // the free starting castle
)

// IsSet reports whether the cell holds a number or the start marker.
func (v Value) IsSet() bool { return v != Unset }

// Status is the coarse position of the state machine.
type Status string

const (
	StatusAwaitingStart Status = "awaiting_start"
	StatusInTurn        Status = "in_turn"
	StatusGameOver      Status = "game_over"
)

const (
	TurnsPerPhase = 8
	Phases        = 3

	Single = 1
	Double = 2
)

// Dice is one roll: two number dice, two color dice and the hourglass.
type Dice struct {
	Numbers   [2]int           `json:"numbers"`
	Colors    [2]hexgrid.Color `json:"colors"`
	Hourglass int              `json:"hourglass"`
}

// DiceAvailable tracks which faces may still be spent this turn.
type DiceAvailable struct {
	Numbers [2]bool `json:"numbers"`
	Colors  [2]bool `json:"colors"`
}

// Resource names one kind of resource.
type Resource uint8

const (
	NoResource Resource = iota
	Worker
	Monk
	Silver
	Commodity
)

func (r Resource) String() string {
	switch r {
	case Worker:
		return "worker"
	case Monk:
		return "monk"
	case Silver:
		return "silver"
	case Commodity:
		return "commodity"
	}
	return "none"
}

func (r Resource) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Resources are the counts held by the player. Never negative.
type Resources struct {
	Workers     int `json:"workers"`
	Monks       int `json:"monks"`
	Silver      int `json:"silver"`
	Commodities int `json:"commodities"`
}

func (r *Resources) add(kind Resource, n int) {
	switch kind {
	case Worker:
		r.Workers += n
	case Monk:
		r.Monks += n
	case Silver:
		r.Silver += n
	case Commodity:
		r.Commodities += n
	}
}

// ScoreEvent is one audit entry of the score log.
type ScoreEvent struct {
	Msg    string `json:"msg"`
	Points int    `json:"pts"`
}

// State holds everything that changes during a game.
// The board shape is not part of it; Values is indexed by cell id.
type State struct {
	MapID              string                  `json:"mapId"`
	Phase              int                     `json:"phase"`
	Turn               int                     `json:"turn"`
	Values             []Value                 `json:"values"`
	StartChosen        bool                    `json:"startHexChosen"`
	StartCell          int                     `json:"startCell"`
	Dice               Dice                    `json:"dice"`
	Available          DiceAvailable           `json:"diceAvailable"`
	PlacedThisTurn     int                     `json:"placedThisTurn"`
	BonusUsedThisTurn  bool                    `json:"bonusUsedThisTurn"`
	SilverUsedThisTurn bool                    `json:"silverUsedThisTurn"`
	Resources          Resources               `json:"resources"`
	Score              int                     `json:"score"`
	ScoreEvents        []ScoreEvent            `json:"scoreEvents"`
	CompletedColors    [hexgrid.NumColors]bool `json:"completedColors"`
	History            []Dice                  `json:"history"`
	Undo               *State                  `json:"undo,omitempty"`
}

// Clone returns a deep copy, including the undo slot.
func (s *State) Clone() State {
	out := s.cloneFlat()
	if s.Undo != nil {
		u := s.Undo.cloneFlat()
		out.Undo = &u
	}
	return out
}

// cloneFlat deep-copies every field except the undo slot, which is left nil.
func (s *State) cloneFlat() State {
	out := *s
	out.Undo = nil
	out.Values = cloneSlice(s.Values)
	out.ScoreEvents = cloneSlice(s.ScoreEvents)
	out.History = cloneSlice(s.History)
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}

// MarkResult describes what a single placement produced.
type MarkResult struct {
	Points         int           `json:"points"`
	AreaCompleted  bool          `json:"areaCompleted"`
	AreaSize       int           `json:"areaSize,omitempty"`
	ColorCompleted bool          `json:"colorCompleted"`
	Gained         []Resource    `json:"gained,omitempty"`
	Color          hexgrid.Color `json:"color"`
}

func (m *MarkResult) gain(r Resource) {
	if r == NoResource {
		return
	}
	m.Gained = append(m.Gained, r)
}

// Move is one legal (cell, number die, color die) choice.
type Move struct {
	CellID    int           `json:"cellId"`
	NumberDie int           `json:"numberDie"`
	ColorDie  int           `json:"colorDie"`
	Number    int           `json:"number"`
	Color     hexgrid.Color `json:"color"`
}

// ColorProgress summarizes one color for completion tracks.
type ColorProgress struct {
	Color     hexgrid.Color `json:"color"`
	Filled    int           `json:"filled"`
	Total     int           `json:"total"`
	Completed bool          `json:"completed"`
	Bonus     int           `json:"bonus"`
}

// HighScore is emitted once when a game ends.
type HighScore struct {
	Score int       `json:"score"`
	At    time.Time `json:"at"`
	MapID string    `json:"map"`
}
