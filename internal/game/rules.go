// apps/go-server/internal/game/rules.go
//
// Placement validation.
// A cell may take (number, color) when:
//   - it is empty and its color equals the color die exactly;
//   - a neighbor already holds a value (the starting castle is exempt);
//   - the color rule below holds.
//
//   gray   (mine)      number is 3 or 4
//   blue   (river)     number is 5 or 6
//   purple (monastery) number is 1 or 2
//   green  (castle)    number equals the value of some marked neighbor
//   yellow (pasture)   number equals the values already in the area
//   orange (city)      number differs from every value already in the area

package game

import "github.com/robalobadob/burgundy/apps/go-server/internal/hexgrid"

// CanMark reports whether cell id may take number with color.
// It has no side effects. Unknown cells are never markable.
func (g *Game) CanMark(cellID, number int, color hexgrid.Color) bool {
	cell, ok := g.board.Cell(cellID)
	if !ok {
		return false
	}
	return canMark(g.board, &g.st, cell, number, color)
}

func canMark(b *hexgrid.Board, st *State, cell *hexgrid.Cell, number int, color hexgrid.Color) bool {
	if number < 1 || number > 6 {
		return false
	}
	if st.Values[cell.ID].IsSet() || cell.Color != color {
		return false
	}
	if cell.ID != st.StartCell && !hasMarkedNeighbor(st, cell) {
		return false
	}

	switch cell.Color {
	case hexgrid.Gray:
		return number == 3 || number == 4
	case hexgrid.Blue:
		return number == 5 || number == 6
	case hexgrid.Purple:
		return number == 1 || number == 2
	case hexgrid.Green:
		for _, n := range cell.Neighbors {
			if st.Values[n] == Value(number) {
				return true
			}
		}
		return false
	case hexgrid.Yellow:
		for _, id := range b.Area(cell.AreaID) {
			if v := st.Values[id]; v.IsSet() && v != Value(number) {
				return false
			}
		}
		return true
	case hexgrid.Orange:
		for _, id := range b.Area(cell.AreaID) {
			if st.Values[id] == Value(number) {
				return false
			}
		}
		return true
	}
	return false
}

func hasMarkedNeighbor(st *State, cell *hexgrid.Cell) bool {
	for _, n := range cell.Neighbors {
		if st.Values[n].IsSet() {
			return true
		}
	}
	return false
}
