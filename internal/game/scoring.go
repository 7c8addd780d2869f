package game

import (
	"fmt"

	"github.com/robalobadob/burgundy/apps/go-server/internal/hexgrid"
)

// areaPoints[size][phase-1]; sizes above 4 do not occur and score nothing.
var areaPoints = [...][Phases]int{
	1: {1, 1, 1},
	2: {4, 3, 2},
	3: {8, 6, 4},
	4: {13, 10, 7},
}

// colorPoints[0] applies in phases 1 and 2, colorPoints[1] in phase 3.
// Indexed by hexgrid.Color.
var colorPoints = [2][hexgrid.NumColors]int{
	{hexgrid.Orange: 6, hexgrid.Blue: 4, hexgrid.Green: 3, hexgrid.Yellow: 4, hexgrid.Purple: 3, hexgrid.Gray: 3},
	{hexgrid.Orange: 3, hexgrid.Blue: 2, hexgrid.Green: 1, hexgrid.Yellow: 2, hexgrid.Purple: 2, hexgrid.Gray: 1},
}

// areaResource is the resource granted for completing an area of a color.
var areaResource = [hexgrid.NumColors]Resource{
	hexgrid.Orange: Worker,
	hexgrid.Blue:   Commodity,
	hexgrid.Purple: Monk,
}

var castleResource = map[hexgrid.CastleBonus]Resource{
	hexgrid.BonusMonk:      Monk,
	hexgrid.BonusWorker:    Worker,
	hexgrid.BonusSilver:    Silver,
	hexgrid.BonusCommodity: Commodity,
}

// AreaBonus is the points for completing an area of the given size and
// color in a phase. Pastures score double.
func AreaBonus(size, phase int, c hexgrid.Color) int {
	if size < 1 || size >= len(areaPoints) || phase < 1 || phase > Phases {
		return 0
	}
	pts := areaPoints[size][phase-1]
	if c == hexgrid.Yellow {
		pts *= 2
	}
	return pts
}

// ColorBonus is the points for filling every cell of color c in a phase.
func ColorBonus(c hexgrid.Color, phase int) int {
	if !c.Valid() {
		return 0
	}
	if phase >= Phases {
		return colorPoints[1][c]
	}
	return colorPoints[0][c]
}

// AreaResource is the resource granted when an area of color c completes.
func AreaResource(c hexgrid.Color) Resource {
	if !c.Valid() {
		return NoResource
	}
	return areaResource[c]
}

// addPoints credits the score and prepends an event to the log.
func (s *State) addPoints(msg string, pts int) {
	s.Score += pts
	s.ScoreEvents = append([]ScoreEvent{{Msg: msg, Points: pts}}, s.ScoreEvents...)
}

// settle applies every bonus triggered by the value just written to cell.
// The starting castle only grants its resource.
func (g *Game) settle(cell *hexgrid.Cell, initial bool) MarkResult {
	st := &g.st
	res := MarkResult{Color: cell.Color}

	if !initial && g.areaComplete(cell.AreaID) {
		size := g.board.AreaSize(cell.AreaID)
		pts := AreaBonus(size, st.Phase, cell.Color)
		msg := fmt.Sprintf("Area size %d", size)
		if cell.Color == hexgrid.Yellow {
			msg = fmt.Sprintf("Pasture area size %d", size)
		}
		st.addPoints(msg, pts)
		res.Points += pts
		res.AreaCompleted = true
		res.AreaSize = size

		r := AreaResource(cell.Color)
		st.Resources.add(r, 1)
		res.gain(r)
	}

	if cell.Color == hexgrid.Green {
		r := castleResource[cell.CastleBonus]
		st.Resources.add(r, 1)
		res.gain(r)
		if !initial {
			st.addPoints(fmt.Sprintf("Castle bonus (%s)", r), 1)
			res.Points++
		}
	}

	if !initial && !st.CompletedColors[cell.Color] && g.colorComplete(cell.Color) {
		st.CompletedColors[cell.Color] = true
		pts := ColorBonus(cell.Color, st.Phase)
		st.addPoints(fmt.Sprintf("Completed %s hexes", cell.Color), pts)
		res.Points += pts
		res.ColorCompleted = true
	}
	return res
}

func (g *Game) areaComplete(areaID int) bool {
	for _, id := range g.board.Area(areaID) {
		if !g.st.Values[id].IsSet() {
			return false
		}
	}
	return true
}

func (g *Game) colorComplete(c hexgrid.Color) bool {
	for _, id := range g.board.CellsOfColor(c) {
		if !g.st.Values[id].IsSet() {
			return false
		}
	}
	return true
}
