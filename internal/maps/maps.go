// apps/go-server/internal/maps/maps.go
//
// Catalogue of the four playable map layouts.
//
// Responsibilities:
//   - Load layouts A..D once, from MAPS_DIR when set or from the embedded assets.
//   - Validate every layout by building it (a bad layout fails Init).
//   - Hand out the shared, immutable board of each map.
//
// Environment variables:
//   MAPS_DIR=/path/to/layouts   (expects A.txt, B.txt, C.txt, D.txt)

package maps

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/robalobadob/burgundy/apps/go-server/assets"
	"github.com/robalobadob/burgundy/apps/go-server/internal/hexgrid"
)

// ErrUnknownMap is returned for ids outside A..D.
var ErrUnknownMap = errors.New("unknown map")

// Default is used when a caller does not pick a map.
const Default = "A"

var ids = []string{"A", "B", "C", "D"}

var (
	initOnce   sync.Once
	layouts    map[string][][]string
	boards     map[string]*hexgrid.Board
	initialErr error
)

// Init loads and validates all layouts exactly once.
func Init() error {
	initOnce.Do(func() {
		dir := os.Getenv("MAPS_DIR")
		layouts = make(map[string][][]string, len(ids))
		boards = make(map[string]*hexgrid.Board, len(ids))
		for _, id := range ids {
			rows, err := load(dir, id)
			if err != nil {
				initialErr = fmt.Errorf("maps: load %s: %w", id, err)
				return
			}
			b, err := hexgrid.Build(rows)
			if err != nil {
				initialErr = fmt.Errorf("maps: build %s: %w", id, err)
				return
			}
			layouts[id] = rows
			boards[id] = b
		}
	})
	return initialErr
}

func load(dir, id string) ([][]string, error) {
	if dir == "" {
		return assets.MapLayout(id)
	}
	f, err := os.Open(filepath.Join(dir, id+".txt"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.ReadRows(f)
}

// IDs lists the map ids in display order.
func IDs() []string { return append([]string(nil), ids...) }

// Layout returns a copy of the raw token rows of a map.
func Layout(id string) ([][]string, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	rows, ok := layouts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMap, id)
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

// Board returns the built board of a map. Boards are immutable, so
// all games on the same map share one.
func Board(id string) (*hexgrid.Board, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	b, ok := boards[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMap, id)
	}
	return b, nil
}
