// apps/go-server/internal/hexgrid/builder.go
//
// Turns a row-based map layout into a board graph.
// Responsibilities:
//   - Assign axial coordinates (q, r) to every token of the layout.
//   - Parse tokens into a color and an optional castle bonus.
//   - Link each cell to the cells occupying its six neighbor coordinates.
//   - Label areas: maximal connected groups of same-color cells.
//
// Notes:
//   - The board is a hexagon of radius 3 written as 7 rows (4..7..4 cells).
//   - A Board never changes after Build; per-game values live in game.State.

package hexgrid

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownColor   = errors.New("unknown color")
	ErrBadCastleBonus = errors.New("bad castle bonus")
	ErrBadShape       = errors.New("bad board shape")
)

// Row widths and starting q per row of the radius-3 board.
var (
	rowWidths  = [...]int{4, 5, 6, 7, 6, 5, 4}
	rowQStart  = [...]int{0, -1, -2, -3, -3, -3, -3}
	centerRow  = len(rowWidths) / 2
	directions = [6]Coord{{1, 0}, {1, -1}, {0, -1}, {-1, 0}, {-1, 1}, {0, 1}}
)

// Coord is an axial hex coordinate. The cube coordinate s is -q-r.
type Coord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the derived third cube coordinate.
func (c Coord) S() int { return -c.Q - c.R }

// Cell is one board space.
type Cell struct {
	ID          int         `json:"id"`
	Coord       Coord       `json:"coord"`
	Color       Color       `json:"color"`
	CastleBonus CastleBonus `json:"castleBonus,omitempty"`
	AreaID      int         `json:"areaId"`
	Neighbors   []int       `json:"neighbors"`
}

// Board is the immutable graph produced by Build.
type Board struct {
	Cells   []Cell
	areas   map[int][]int
	byColor [NumColors][]int
}

// Build parses a layout and computes adjacency and areas.
// Any malformed token or row makes the whole layout unusable.
func Build(rows [][]string) (*Board, error) {
	if len(rows) != len(rowWidths) {
		return nil, fmt.Errorf("%w: %d rows, want %d", ErrBadShape, len(rows), len(rowWidths))
	}

	b := &Board{areas: make(map[int][]int)}
	for ri, row := range rows {
		if len(row) != rowWidths[ri] {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrBadShape, ri, len(row), rowWidths[ri])
		}
		for ci, tok := range row {
			color, bonus, err := parseToken(tok)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", ri, ci, err)
			}
			b.Cells = append(b.Cells, Cell{
				ID:          len(b.Cells),
				Coord:       Coord{Q: rowQStart[ri] + ci, R: ri - centerRow},
				Color:       color,
				CastleBonus: bonus,
			})
		}
	}

	b.link()
	b.labelAreas()
	return b, nil
}

// parseToken splits "green+monk" (or "green_monk") into color and bonus.
func parseToken(tok string) (Color, CastleBonus, error) {
	tok = strings.ToLower(strings.TrimSpace(tok))
	name, tag, compound := strings.Cut(tok, "+")
	if !compound {
		name, tag, compound = strings.Cut(tok, "_")
	}
	c, err := ParseColor(name)
	if err != nil {
		return 0, NoBonus, err
	}
	if !compound {
		return c, NoBonus, nil
	}
	if c != Green {
		return 0, NoBonus, fmt.Errorf("%w: %q on a %s cell", ErrBadCastleBonus, tag, c)
	}
	bonus, err := ParseCastleBonus(tag)
	if err != nil {
		return 0, NoBonus, err
	}
	return c, bonus, nil
}

// link fills Neighbors from the coordinate lookup; the relation is
// symmetric because every direction has its opposite in the table.
func (b *Board) link() {
	at := make(map[Coord]int, len(b.Cells))
	for _, c := range b.Cells {
		at[c.Coord] = c.ID
	}
	for i := range b.Cells {
		c := &b.Cells[i]
		c.Neighbors = make([]int, 0, len(directions))
		for _, d := range directions {
			if id, ok := at[Coord{Q: c.Coord.Q + d.Q, R: c.Coord.R + d.R}]; ok {
				c.Neighbors = append(c.Neighbors, id)
			}
		}
	}
}

// labelAreas runs a BFS over same-color edges from every unlabeled cell.
func (b *Board) labelAreas() {
	next := 1
	for i := range b.Cells {
		if b.Cells[i].AreaID != 0 {
			continue
		}
		id := next
		next++
		b.Cells[i].AreaID = id
		queue := []int{i}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			b.areas[id] = append(b.areas[id], cur)
			for _, n := range b.Cells[cur].Neighbors {
				if b.Cells[n].AreaID == 0 && b.Cells[n].Color == b.Cells[cur].Color {
					b.Cells[n].AreaID = id
					queue = append(queue, n)
				}
			}
		}
	}
	for _, c := range b.Cells {
		b.byColor[c.Color] = append(b.byColor[c.Color], c.ID)
	}
}

// Len is the number of cells.
func (b *Board) Len() int { return len(b.Cells) }

// Cell returns the cell with the given id.
func (b *Board) Cell(id int) (*Cell, bool) {
	if id < 0 || id >= len(b.Cells) {
		return nil, false
	}
	return &b.Cells[id], true
}

// Area returns the member cell ids of an area.
func (b *Board) Area(id int) []int { return b.areas[id] }

// AreaSize is the member count of an area, fixed at build time.
func (b *Board) AreaSize(id int) int { return len(b.areas[id]) }

// AreaSizes maps every area id to its size.
func (b *Board) AreaSizes() map[int]int {
	out := make(map[int]int, len(b.areas))
	for id, m := range b.areas {
		out[id] = len(m)
	}
	return out
}

// NumAreas is the number of areas; ids run from 1 to NumAreas.
func (b *Board) NumAreas() int { return len(b.areas) }

// CellsOfColor returns the ids of every cell of color c.
func (b *Board) CellsOfColor(c Color) []int {
	if !c.Valid() {
		return nil
	}
	return b.byColor[c]
}
