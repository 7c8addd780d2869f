// apps/go-server/internal/game/engine.go
//
// Turn and resource state machine for a single solo game.
// Responsibilities:
//   - Create games on a prebuilt board; resume saved states.
//   - Starting castle, dice rolls, placements and resource actions.
//   - Turn/phase progression and the end of the game.
//   - One-level undo by whole-state snapshot.
//
// Notes:
//   - A Game is not safe for concurrent use; hosts serialize calls.
//   - Every failed call returns an error and leaves the state untouched.
//   - The snapshot is taken before every mutating call except a roll, and a
//     roll discards it.

package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/burgundy/apps/go-server/internal/hexgrid"
)

var (
	ErrNoSuchCell     = errors.New("no such cell")
	ErrInvalidMove    = errors.New("invalid move")
	ErrDieUsed        = errors.New("die already used")
	ErrBadDie         = errors.New("die index must be 1 or 2")
	ErrBadValue       = errors.New("bad die value")
	ErrPlacementLimit = errors.New("no placements left this turn")
	ErrNoResource     = errors.New("not enough resources")
	ErrBonusUsed      = errors.New("bonus already used this turn")
	ErrSilverUsed     = errors.New("silver already used this turn")
	ErrHourglass      = errors.New("selling needs a double hourglass")
	ErrNoSnapshot     = errors.New("nothing to undo")
	ErrNotStarted     = errors.New("starting castle not chosen")
	ErrAlreadyStarted = errors.New("starting castle already chosen")
	ErrGameOver       = errors.New("game over")
	ErrCorruptState   = errors.New("corrupt state")
)

// Options wires the engine to its host.
type Options struct {
	// Rand drives the dice. Defaults to a time-seeded PCG.
	Rand RandomSource
	// Now stamps high scores. Defaults to time.Now.
	Now func() time.Time
	// OnSave receives a copy of the state after every successful mutation.
	OnSave func(State)
	// OnGameOver receives the final score exactly once.
	OnGameOver func(HighScore)
	// SellNeedsDouble restricts selling commodities to double-hourglass rolls.
	SellNeedsDouble bool
}

// Game is one solo game on a board.
type Game struct {
	ID    string
	board *hexgrid.Board
	st    State
	opts  Options
}

// New starts a game awaiting its starting castle.
func New(board *hexgrid.Board, mapID string, opts Options) *Game {
	g := &Game{
		ID:    uuid.NewString(),
		board: board,
		opts:  withDefaults(opts),
		st: State{
			MapID:       mapID,
			Phase:       1,
			Turn:        1,
			Values:      make([]Value, board.Len()),
			StartCell:   -1,
			ScoreEvents: []ScoreEvent{},
			History:     []Dice{},
		},
	}
	return g
}

// Resume continues a saved state on its board.
func Resume(id string, board *hexgrid.Board, st State, opts Options) (*Game, error) {
	if err := validate(board, &st); err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	return &Game{ID: id, board: board, st: st.Clone(), opts: withDefaults(opts)}, nil
}

func withDefaults(o Options) Options {
	if o.Rand == nil {
		o.Rand = NewRand(uint64(time.Now().UnixNano()))
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func validate(b *hexgrid.Board, st *State) error {
	switch {
	case len(st.Values) != b.Len():
		return fmt.Errorf("%w: %d values for %d cells", ErrCorruptState, len(st.Values), b.Len())
	case st.Phase < 1 || st.Phase > Phases+1:
		return fmt.Errorf("%w: phase %d", ErrCorruptState, st.Phase)
	case st.Turn < 1 || st.Turn > TurnsPerPhase:
		return fmt.Errorf("%w: turn %d", ErrCorruptState, st.Turn)
	case st.StartCell < -1 || st.StartCell >= b.Len():
		return fmt.Errorf("%w: start cell %d", ErrCorruptState, st.StartCell)
	}
	for i, v := range st.Values {
		if v < StartMarker || v > 6 {
			return fmt.Errorf("%w: cell %d holds %d", ErrCorruptState, i, v)
		}
		if v == StartMarker && i != st.StartCell {
			return fmt.Errorf("%w: start marker on cell %d, start cell %d", ErrCorruptState, i, st.StartCell)
		}
	}
	if err := validateStart(b, st); err != nil {
		return err
	}
	if st.Undo != nil {
		return validate(b, st.Undo)
	}
	return nil
}

// validateStart checks the start fields agree: no start cell before the
// start is chosen, a marked castle after.
func validateStart(b *hexgrid.Board, st *State) error {
	if !st.StartChosen {
		if st.StartCell != -1 {
			return fmt.Errorf("%w: start cell %d before start", ErrCorruptState, st.StartCell)
		}
		return nil
	}
	cell, ok := b.Cell(st.StartCell)
	switch {
	case !ok:
		return fmt.Errorf("%w: start chosen without a start cell", ErrCorruptState)
	case cell.Color != hexgrid.Green:
		return fmt.Errorf("%w: start cell %d is not a castle", ErrCorruptState, st.StartCell)
	case st.Values[st.StartCell] != StartMarker:
		return fmt.Errorf("%w: start cell %d holds %d", ErrCorruptState, st.StartCell, st.Values[st.StartCell])
	}
	return nil
}

// Board is the immutable board the game is played on.
func (g *Game) Board() *hexgrid.Board { return g.board }

// State returns a deep copy of the current state.
func (g *Game) State() State { return g.st.Clone() }

// Status reports where the state machine is.
func (g *Game) Status() Status {
	switch {
	case g.st.Phase > Phases:
		return StatusGameOver
	case !g.st.StartChosen:
		return StatusAwaitingStart
	}
	return StatusInTurn
}

// CanUndo reports whether Undo would succeed.
func (g *Game) CanUndo() bool { return g.st.Undo != nil && g.Status() != StatusGameOver }

func (g *Game) requireInTurn() error {
	switch g.Status() {
	case StatusGameOver:
		return ErrGameOver
	case StatusAwaitingStart:
		return ErrNotStarted
	}
	return nil
}

// ChooseStart marks the free starting castle and rolls the first dice.
// The castle grants its resource but no points.
func (g *Game) ChooseStart(cellID int) error {
	if g.st.StartChosen {
		return ErrAlreadyStarted
	}
	cell, ok := g.board.Cell(cellID)
	if !ok {
		return ErrNoSuchCell
	}
	if cell.Color != hexgrid.Green || g.st.Values[cellID].IsSet() {
		return ErrInvalidMove
	}
	g.st.Values[cellID] = StartMarker
	g.st.StartCell = cellID
	g.settle(cell, true)
	g.st.StartChosen = true
	g.rollDice()
	g.save()
	return nil
}

// rollDice draws new dice and opens a new turn's budget. It forfeits undo.
func (g *Game) rollDice() {
	st := &g.st
	st.Dice = drawDice(g.opts.Rand)
	st.Available = DiceAvailable{Numbers: [2]bool{true, true}, Colors: [2]bool{true, true}}
	st.BonusUsedThisTurn = false
	st.SilverUsedThisTurn = false
	st.PlacedThisTurn = 0
	st.Undo = nil
	st.History = append(st.History, st.Dice)
}

// snapshot records the current state as the undo point.
func (g *Game) snapshot() {
	snap := g.st.cloneFlat()
	g.st.Undo = &snap
}

func (g *Game) save() {
	if g.opts.OnSave != nil {
		g.opts.OnSave(g.st.Clone())
	}
}

func dieIndex(die int) (int, error) {
	if die != 1 && die != 2 {
		return 0, ErrBadDie
	}
	return die - 1, nil
}

// placementsLeft: one per turn, one more after silver.
func (g *Game) placementsLeft() bool {
	if g.st.SilverUsedThisTurn {
		return g.st.PlacedThisTurn < 2
	}
	return g.st.PlacedThisTurn < 1
}

// MarkHex writes number die numberDie into cell, paying with color die
// colorDie. Dice are addressed as 1 or 2.
func (g *Game) MarkHex(cellID, numberDie, colorDie int) (MarkResult, error) {
	if err := g.requireInTurn(); err != nil {
		return MarkResult{}, err
	}
	cell, ok := g.board.Cell(cellID)
	if !ok {
		return MarkResult{}, ErrNoSuchCell
	}
	ni, err := dieIndex(numberDie)
	if err != nil {
		return MarkResult{}, err
	}
	ci, err := dieIndex(colorDie)
	if err != nil {
		return MarkResult{}, err
	}
	if !g.st.Available.Numbers[ni] || !g.st.Available.Colors[ci] {
		return MarkResult{}, ErrDieUsed
	}
	if !g.placementsLeft() {
		return MarkResult{}, ErrPlacementLimit
	}
	number, color := g.st.Dice.Numbers[ni], g.st.Dice.Colors[ci]
	if !canMark(g.board, &g.st, cell, number, color) {
		return MarkResult{}, ErrInvalidMove
	}

	g.snapshot()
	g.st.PlacedThisTurn++
	g.st.Available.Numbers[ni] = false
	g.st.Available.Colors[ci] = false
	g.st.Values[cellID] = Value(number)
	res := g.settle(cell, false)
	g.save()
	return res, nil
}

// UseMonk spends a monk to turn color die colorDie into color.
func (g *Game) UseMonk(colorDie int, color hexgrid.Color) error {
	if err := g.requireInTurn(); err != nil {
		return err
	}
	i, err := dieIndex(colorDie)
	if err != nil {
		return err
	}
	if !color.Valid() {
		return ErrBadValue
	}
	if err := g.canUseBonus(g.st.Resources.Monks); err != nil {
		return err
	}
	if !g.st.Available.Colors[i] {
		return ErrDieUsed
	}
	g.snapshot()
	g.st.Resources.Monks--
	g.st.Dice.Colors[i] = color
	g.st.BonusUsedThisTurn = true
	g.save()
	return nil
}

// UseWorker spends a worker to turn number die numberDie into number.
func (g *Game) UseWorker(numberDie, number int) error {
	if err := g.requireInTurn(); err != nil {
		return err
	}
	i, err := dieIndex(numberDie)
	if err != nil {
		return err
	}
	if number < 1 || number > 6 {
		return ErrBadValue
	}
	if err := g.canUseBonus(g.st.Resources.Workers); err != nil {
		return err
	}
	if !g.st.Available.Numbers[i] {
		return ErrDieUsed
	}
	g.snapshot()
	g.st.Resources.Workers--
	g.st.Dice.Numbers[i] = number
	g.st.BonusUsedThisTurn = true
	g.save()
	return nil
}

func (g *Game) canUseBonus(held int) error {
	if held <= 0 {
		return ErrNoResource
	}
	if g.st.BonusUsedThisTurn {
		return ErrBonusUsed
	}
	return nil
}

// UseSilver spends a silver for one extra placement this turn.
// It stacks with a monk or worker.
func (g *Game) UseSilver() error {
	if err := g.requireInTurn(); err != nil {
		return err
	}
	if g.st.Resources.Silver <= 0 {
		return ErrNoResource
	}
	if g.st.SilverUsedThisTurn {
		return ErrSilverUsed
	}
	g.snapshot()
	g.st.Resources.Silver--
	g.st.SilverUsedThisTurn = true
	g.save()
	return nil
}

// SellCommodities turns every commodity into a silver and 2 points each.
// It returns how many were sold; selling none changes nothing.
func (g *Game) SellCommodities() (int, error) {
	if err := g.requireInTurn(); err != nil {
		return 0, err
	}
	if g.opts.SellNeedsDouble && g.st.Dice.Hourglass != Double {
		return 0, ErrHourglass
	}
	n := g.st.Resources.Commodities
	if n == 0 {
		return 0, nil
	}
	g.snapshot()
	g.st.Resources.Commodities = 0
	g.st.Resources.Silver += n
	g.st.addPoints(fmt.Sprintf("Sold %d commodities", n), 2*n)
	g.save()
	return n, nil
}

// Moves lists every legal placement with the dice still available.
func (g *Game) Moves() []Move {
	var out []Move
	g.eachMove(func(m Move) bool {
		out = append(out, m)
		return true
	})
	return out
}

// HasValidMoves reports whether at least one placement is still possible.
func (g *Game) HasValidMoves() bool {
	found := false
	g.eachMove(func(Move) bool {
		found = true
		return false
	})
	return found
}

// eachMove calls fn for each legal move until fn returns false.
func (g *Game) eachMove(fn func(Move) bool) {
	if g.requireInTurn() != nil || !g.placementsLeft() {
		return
	}
	st := &g.st
	for ni := 0; ni < 2; ni++ {
		if !st.Available.Numbers[ni] {
			continue
		}
		for ci := 0; ci < 2; ci++ {
			if !st.Available.Colors[ci] {
				continue
			}
			num, col := st.Dice.Numbers[ni], st.Dice.Colors[ci]
			for _, id := range g.board.CellsOfColor(col) {
				cell := &g.board.Cells[id]
				if !canMark(g.board, st, cell, num, col) {
					continue
				}
				if !fn(Move{CellID: id, NumberDie: ni + 1, ColorDie: ci + 1, Number: num, Color: col}) {
					return
				}
			}
		}
	}
}

// EndTurn closes the turn. A turn without placements earns a worker.
// After the 8th turn of phase 3 the game ends and no more dice are rolled.
func (g *Game) EndTurn() error {
	if err := g.requireInTurn(); err != nil {
		return err
	}
	st := &g.st
	if st.PlacedThisTurn == 0 {
		st.Resources.Workers++
	}
	st.Turn++
	if st.Turn > TurnsPerPhase {
		st.Turn = 1
		st.Phase++
	}
	if st.Phase > Phases {
		st.Undo = nil
		if g.opts.OnGameOver != nil {
			g.opts.OnGameOver(HighScore{Score: st.Score, At: g.opts.Now(), MapID: st.MapID})
		}
	} else {
		g.rollDice()
	}
	g.save()
	return nil
}

// Undo restores the state captured before the last action. The snapshot
// stays, so undoing twice lands on the same state.
func (g *Game) Undo() error {
	if g.Status() == StatusGameOver {
		return ErrGameOver
	}
	if g.st.Undo == nil {
		return ErrNoSnapshot
	}
	snap := g.st.Undo
	g.st = snap.cloneFlat()
	g.st.Undo = snap
	g.save()
	return nil
}

// Progress summarizes every color for completion tracks.
func (g *Game) Progress() []ColorProgress {
	out := make([]ColorProgress, 0, hexgrid.NumColors)
	phase := min(g.st.Phase, Phases)
	for _, c := range hexgrid.Colors {
		ids := g.board.CellsOfColor(c)
		filled := 0
		for _, id := range ids {
			if g.st.Values[id].IsSet() {
				filled++
			}
		}
		out = append(out, ColorProgress{
			Color:     c,
			Filled:    filled,
			Total:     len(ids),
			Completed: g.st.CompletedColors[c],
			Bonus:     ColorBonus(c, phase),
		})
	}
	return out
}
