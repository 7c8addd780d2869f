// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the daily challenge.
//   - POST /daily/new         → start (or resume) today's game
//   - GET  /daily/leaderboard → best results for today (or ?date=YYYY-MM-DD)
//
// Everyone gets the same map and dice sequence on a given UTC day; both
// derive from HMAC(DAILY_SALT, date). A player may finish one daily game
// per day (first result wins).

package httpserver

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/burgundy/apps/go-server/internal/daily"
	"github.com/robalobadob/burgundy/apps/go-server/internal/game"
	"github.com/robalobadob/burgundy/apps/go-server/internal/maps"
	"github.com/robalobadob/burgundy/apps/go-server/internal/store"
)

// dailyServer tracks today's open daily game per owner.
type dailyServer struct {
	srv   *Server
	mu    sync.Mutex
	games map[string]string // owner|date → game id
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{srv: s, games: make(map[string]string)}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

type dailyNewRes struct {
	GameID string    `json:"gameId,omitempty"`
	Date   string    `json:"date"`
	Map    string    `json:"map"`
	Played bool      `json:"played"`
	Game   *gameView `json:"game,omitempty"`
}

// handleNew returns today's game for the caller, creating it on first call.
// Callers who already finished today get Played=true and no game.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	s := d.srv
	player, owner := s.identity(w, r)
	now := s.now()
	date := daily.DateKey(now)
	mapID := daily.MapFor(now, s.dailySalt, maps.IDs())

	played, err := s.daily.AlreadyPlayed(r.Context(), owner, date)
	if err != nil {
		writeErr(w, err)
		return
	}
	if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Map: mapID, Played: true})
		return
	}

	key := owner + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.games[key]; ok {
		if sess, err := s.session(r.Context(), id); err == nil {
			sess.Lock()
			v := viewOf(sess.Game)
			sess.Unlock()
			writeJSON(w, http.StatusOK, dailyNewRes{GameID: id, Date: date, Map: mapID, Game: &v})
			return
		}
	}

	sess := store.NewSession(nil, player, owner)
	sess.Daily = date
	sess.Seed = daily.Seed(now, s.dailySalt)
	sess, err = s.newSession(r.Context(), mapID, sess)
	if err != nil {
		writeErr(w, err)
		return
	}
	d.games[key] = sess.Game.ID
	v := viewOf(sess.Game)
	writeJSON(w, http.StatusCreated, dailyNewRes{GameID: sess.Game.ID, Date: date, Map: mapID, Game: &v})
}

// handleLeaderboard lists the best daily results for a date.
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.now())
	}
	rows, err := d.srv.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "results": rows})
}

func dailyResult(sess *store.Session, h game.HighScore) daily.Result {
	return daily.Result{PlayerID: sess.Owner, Date: sess.Daily, MapID: h.MapID, Score: h.Score}
}
