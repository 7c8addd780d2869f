// apps/go-server/internal/httpserver/routes_scores.go
//
// Read-only routes for boards and the high-score archive.
//   - GET /maps              → map ids with cell and area counts
//   - GET /maps/{id}         → full board geometry for renderers
//   - GET /scores            → archive, best first (?map=X for one map)
//   - GET /scores/recent     → archive, newest first

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/burgundy/apps/go-server/internal/hexgrid"
	"github.com/robalobadob/burgundy/apps/go-server/internal/maps"
	"github.com/robalobadob/burgundy/apps/go-server/internal/scores"
)

type mapSummary struct {
	ID    string `json:"id"`
	Cells int    `json:"cells"`
	Areas int    `json:"areas"`
}

type mapDetail struct {
	ID        string         `json:"id"`
	Cells     []hexgrid.Cell `json:"cells"`
	AreaSizes map[int]int    `json:"areaSizes"`
}

func (s *Server) mountMaps(r chi.Router) {
	r.Get("/maps", func(w http.ResponseWriter, r *http.Request) {
		out := []mapSummary{}
		for _, id := range maps.IDs() {
			b, err := maps.Board(id)
			if err != nil {
				writeErr(w, err)
				return
			}
			out = append(out, mapSummary{ID: id, Cells: b.Len(), Areas: b.NumAreas()})
		}
		writeJSON(w, http.StatusOK, out)
	})
	r.Get("/maps/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		b, err := maps.Board(id)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown_map"})
			return
		}
		writeJSON(w, http.StatusOK, mapDetail{ID: id, Cells: b.Cells, AreaSizes: b.AreaSizes()})
	})
}

func (s *Server) mountScores(r chi.Router) {
	r.Get("/scores", func(w http.ResponseWriter, r *http.Request) {
		mapID := r.URL.Query().Get("map")
		if mapID == "" {
			writeJSON(w, http.StatusOK, s.ledger.Top())
			return
		}
		rows, err := s.scores.Leaderboard(r.Context(), mapID, scores.Capacity)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	})
	r.Get("/scores/recent", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.ledger.Recent())
	})
}
