package hexgrid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniform returns a well-shaped layout with every cell set to tok.
func uniform(tok string) [][]string {
	rows := make([][]string, len(rowWidths))
	for i, w := range rowWidths {
		for j := 0; j < w; j++ {
			rows[i] = append(rows[i], tok)
		}
	}
	return rows
}

func TestBuildCoordinates(t *testing.T) {
	b, err := Build(uniform("blue"))
	require.NoError(t, err)
	require.Equal(t, 37, b.Len())

	assert.Equal(t, Coord{Q: 0, R: -3}, b.Cells[0].Coord)
	assert.Equal(t, Coord{Q: -3, R: 0}, b.Cells[15].Coord)
	assert.Equal(t, Coord{Q: 0, R: 0}, b.Cells[18].Coord)
	assert.Equal(t, Coord{Q: 0, R: 3}, b.Cells[36].Coord)
	for _, c := range b.Cells {
		d := max(abs(c.Coord.Q), abs(c.Coord.R), abs(c.Coord.S()))
		assert.LessOrEqual(t, d, 3, "cell %d", c.ID)
	}
}

func TestBuildNeighbors(t *testing.T) {
	b, err := Build(uniform("gray"))
	require.NoError(t, err)

	assert.Len(t, b.Cells[18].Neighbors, 6, "center")
	assert.Len(t, b.Cells[0].Neighbors, 3, "corner")
	assert.Len(t, b.Cells[1].Neighbors, 4, "edge")
	for _, c := range b.Cells {
		for _, n := range c.Neighbors {
			assert.Contains(t, b.Cells[n].Neighbors, c.ID)
		}
	}
}

func TestBuildAreas(t *testing.T) {
	rows := uniform("orange")
	rows[3][3] = "blue"
	b, err := Build(rows)
	require.NoError(t, err)

	assert.Equal(t, 2, b.NumAreas())
	assert.Equal(t, 1, b.AreaSize(b.Cells[18].AreaID))
	assert.Equal(t, 36, b.AreaSize(b.Cells[0].AreaID))
	assert.Equal(t, []int{18}, b.CellsOfColor(Blue))
	assert.Empty(t, b.CellsOfColor(Green))
	assert.Nil(t, b.CellsOfColor(Color(9)))
}

func TestParseToken(t *testing.T) {
	cases := []struct {
		tok   string
		color Color
		bonus CastleBonus
		err   error
	}{
		{tok: "yellow", color: Yellow},
		{tok: " Gray ", color: Gray},
		{tok: "green", color: Green},
		{tok: "green+monk", color: Green, bonus: BonusMonk},
		{tok: "green_worker", color: Green, bonus: BonusWorker},
		{tok: "green_gray", color: Green, bonus: BonusSilver},
		{tok: "green_blue", color: Green, bonus: BonusCommodity},
		{tok: "GREEN+Purple", color: Green, bonus: BonusMonk},
		{tok: "pink", err: ErrUnknownColor},
		{tok: "green+gold", err: ErrBadCastleBonus},
		{tok: "blue+monk", err: ErrBadCastleBonus},
	}
	for _, tc := range cases {
		t.Run(tc.tok, func(t *testing.T) {
			c, bonus, err := parseToken(tc.tok)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.color, c)
			assert.Equal(t, tc.bonus, bonus)
		})
	}
}

func TestBuildRejectsBadLayouts(t *testing.T) {
	_, err := Build(uniform("blue")[:6])
	assert.ErrorIs(t, err, ErrBadShape)

	rows := uniform("blue")
	rows[2] = rows[2][:5]
	_, err = Build(rows)
	assert.ErrorIs(t, err, ErrBadShape)

	rows = uniform("blue")
	rows[4][1] = "teal"
	_, err = Build(rows)
	assert.ErrorIs(t, err, ErrUnknownColor)
	assert.True(t, strings.Contains(err.Error(), "row 4 col 1"))
}

func TestColorText(t *testing.T) {
	for _, c := range Colors {
		raw, err := c.MarshalText()
		require.NoError(t, err)
		var back Color
		require.NoError(t, back.UnmarshalText(raw))
		assert.Equal(t, c, back)
	}
	_, err := Color(7).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownColor)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
