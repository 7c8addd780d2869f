package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/burgundy/apps/go-server/internal/hexgrid"
	"github.com/robalobadob/burgundy/apps/go-server/internal/maps"
)

// Map A cells used across tests.
const (
	castleCommodity = 10
	castleSilver    = 13
	castleWorker    = 23
	castleMonk      = 26
)

// scripted replays a fixed sequence of draws, cycling when exhausted.
type scripted struct {
	vals []int
	i    int
}

func (s *scripted) next() int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func (s *scripted) Between(lo, hi int) int {
	v := s.next()
	if v < lo || v > hi {
		panic("scripted value out of range")
	}
	return v
}

func (s *scripted) Weighted(weights []int) int { return s.next() }

func colorIndex(c hexgrid.Color) int {
	for i, x := range hexgrid.Colors {
		if x == c {
			return i
		}
	}
	return -1
}

// rollOf encodes one roll for scripted: numbers, colors, hourglass index.
func rollOf(n1, n2 int, c1, c2 hexgrid.Color, double bool) []int {
	h := 0
	if double {
		h = 1
	}
	return []int{n1, n2, colorIndex(c1), colorIndex(c2), h}
}

func newTestGame(t *testing.T, opts Options) *Game {
	t.Helper()
	b, err := maps.Board("A")
	require.NoError(t, err)
	if opts.Rand == nil {
		opts.Rand = &scripted{vals: rollOf(1, 2, hexgrid.Purple, hexgrid.Orange, false)}
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	}
	return New(b, "A", opts)
}

// startedGame chooses the silver castle and then forces the dice.
func startedGame(t *testing.T, d Dice) *Game {
	t.Helper()
	g := newTestGame(t, Options{})
	require.NoError(t, g.ChooseStart(castleSilver))
	setDice(g, d)
	return g
}

func setDice(g *Game, d Dice) {
	g.st.Dice = d
	g.st.Available = DiceAvailable{Numbers: [2]bool{true, true}, Colors: [2]bool{true, true}}
}

func dice(n1, n2 int, c1, c2 hexgrid.Color) Dice {
	return Dice{Numbers: [2]int{n1, n2}, Colors: [2]hexgrid.Color{c1, c2}, Hourglass: Single}
}
