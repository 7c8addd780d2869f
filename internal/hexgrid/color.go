// apps/go-server/internal/hexgrid/color.go
//
// Closed enumerations for board cells.
// Defines:
//   - Color: the six land types (each with its own placement rule).
//   - CastleBonus: the resource printed on a green castle cell.

package hexgrid

import (
	"fmt"
	"strings"
)

// Color is the land type of a cell.
type Color uint8

const (
	Orange Color = iota // city
	Blue                // river
	Green               // castle
	Yellow              // pasture
	Purple              // monastery
	Gray                // mine

	NumColors = 6
)

// Colors lists every color in die-face order.
var Colors = [NumColors]Color{Orange, Blue, Green, Yellow, Purple, Gray}

var colorNames = [NumColors]string{"orange", "blue", "green", "yellow", "purple", "gray"}

func (c Color) String() string {
	if int(c) < NumColors {
		return colorNames[c]
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}

// Valid reports whether c is one of the six colors.
func (c Color) Valid() bool { return int(c) < NumColors }

// ParseColor maps a lowercase color name to a Color.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range colorNames {
		if n == s {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColor, s)
}

func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownColor, uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// CastleBonus is the resource a castle grants when it is marked.
type CastleBonus uint8

const (
	NoBonus CastleBonus = iota
	BonusMonk
	BonusWorker
	BonusSilver
	BonusCommodity
)

var bonusNames = map[CastleBonus]string{
	NoBonus:        "",
	BonusMonk:      "monk",
	BonusWorker:    "worker",
	BonusSilver:    "silver",
	BonusCommodity: "commodity",
}

// Older layouts tag castles with the color of the matching resource.
var bonusAliases = map[string]CastleBonus{
	"monk":      BonusMonk,
	"purple":    BonusMonk,
	"worker":    BonusWorker,
	"orange":    BonusWorker,
	"silver":    BonusSilver,
	"gray":      BonusSilver,
	"commodity": BonusCommodity,
	"blue":      BonusCommodity,
}

func (b CastleBonus) String() string {
	if n, ok := bonusNames[b]; ok {
		return n
	}
	return fmt.Sprintf("bonus(%d)", uint8(b))
}

// ParseCastleBonus accepts a resource name or its legacy color alias.
func ParseCastleBonus(s string) (CastleBonus, error) {
	if b, ok := bonusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return b, nil
	}
	return NoBonus, fmt.Errorf("%w: %q", ErrBadCastleBonus, s)
}

func (b CastleBonus) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *CastleBonus) UnmarshalText(t []byte) error {
	if len(t) == 0 {
		*b = NoBonus
		return nil
	}
	v, err := ParseCastleBonus(string(t))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
