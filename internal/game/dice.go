package game

import (
	"math/rand/v2"

	"github.com/robalobadob/burgundy/apps/go-server/internal/hexgrid"
)

// RandomSource is everything the engine needs from a random generator.
// Inject a fixed implementation to make games reproducible.
type RandomSource interface {
	// Between returns an integer in [lo, hi].
	Between(lo, hi int) int
	// Weighted returns an index i with probability weights[i]/sum(weights).
	Weighted(weights []int) int
}

// hourglassWeights: four single faces, two double faces.
var hourglassWeights = []int{4, 2}

type pcgSource struct{ r *rand.Rand }

// NewRand returns a seeded PCG-backed RandomSource.
func NewRand(seed uint64) RandomSource {
	return &pcgSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Replay returns NewRand(seed) advanced past draws rolls, so a game resumed
// from a save with len(History) == draws keeps rolling the same sequence.
func Replay(seed uint64, draws int) RandomSource {
	src := NewRand(seed)
	for range draws {
		drawDice(src)
	}
	return src
}

func (p *pcgSource) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + p.r.IntN(hi-lo+1)
}

func (p *pcgSource) Weighted(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}
	n := p.r.IntN(total)
	for i, w := range weights {
		if n < w {
			return i
		}
		n -= w
	}
	return len(weights) - 1
}

// drawDice produces a fresh roll from src.
func drawDice(src RandomSource) Dice {
	var d Dice
	d.Numbers[0] = src.Between(1, 6)
	d.Numbers[1] = src.Between(1, 6)
	d.Colors[0] = hexgrid.Colors[src.Between(0, hexgrid.NumColors-1)]
	d.Colors[1] = hexgrid.Colors[src.Between(0, hexgrid.NumColors-1)]
	if src.Weighted(hourglassWeights) == 0 {
		d.Hourglass = Single
	} else {
		d.Hourglass = Double
	}
	return d
}
