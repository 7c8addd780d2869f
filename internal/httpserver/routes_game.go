// apps/go-server/internal/httpserver/routes_game.go
//
// HTTP routes for solo games.
//   - POST /game/new            → new game on a map (optionally seeded)
//   - GET  /game/{id}           → state, status, progress
//   - GET  /game/{id}/moves     → legal placements for the current dice
//   - POST /game/{id}/start|mark|monk|worker|silver|sell|end|undo
//
// Live games are held in the session store. Every engine mutation is saved
// to SQLite and pushed to websocket subscribers; a game that is no longer in
// memory is resumed from its last save on first access.

package httpserver

import (
	"context"
	"math/rand/v2"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/burgundy/apps/go-server/internal/game"
	"github.com/robalobadob/burgundy/apps/go-server/internal/hexgrid"
	"github.com/robalobadob/burgundy/apps/go-server/internal/maps"
	"github.com/robalobadob/burgundy/apps/go-server/internal/scores"
	"github.com/robalobadob/burgundy/apps/go-server/internal/store"
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", s.withSession(s.handleGetGame))
		r.Get("/moves", s.withSession(s.handleMoves))
		r.Post("/start", s.withSession(s.handleStart))
		r.Post("/mark", s.withSession(s.handleMark))
		r.Post("/monk", s.withSession(s.handleMonk))
		r.Post("/worker", s.withSession(s.handleWorker))
		r.Post("/silver", s.withSession(s.handleSilver))
		r.Post("/sell", s.withSession(s.handleSell))
		r.Post("/end", s.withSession(s.handleEnd))
		r.Post("/undo", s.withSession(s.handleUndo))
	})
}

// gameView is what clients see of a game. The undo snapshot is reduced to
// a flag.
type gameView struct {
	GameID        string               `json:"gameId"`
	Status        game.Status          `json:"status"`
	State         game.State           `json:"state"`
	Progress      []game.ColorProgress `json:"progress"`
	CanUndo       bool                 `json:"canUndo"`
	HasValidMoves bool                 `json:"hasValidMoves"`
}

func viewOf(g *game.Game) gameView {
	st := g.State()
	st.Undo = nil
	return gameView{
		GameID:        g.ID,
		Status:        g.Status(),
		State:         st,
		Progress:      g.Progress(),
		CanUndo:       g.CanUndo(),
		HasValidMoves: g.HasValidMoves(),
	}
}

// ------------------------------ sessions -----------------------------------

// newSession starts a game on mapID for sess, wired to saves, scores, and
// the hub. sess carries the owner fields and the dice seed; its Game is
// filled in here.
func (s *Server) newSession(ctx context.Context, mapID string, sess *store.Session) (*store.Session, error) {
	if mapID == "" {
		mapID = maps.Default
	}
	b, err := maps.Board(mapID)
	if err != nil {
		return nil, err
	}
	sess.Game = game.New(b, mapID, s.gameOptions(sess, game.NewRand(sess.Seed)))
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.persist(sess, sess.Game.State())
	return sess, nil
}

// gameOptions binds the engine hooks to sess.
func (s *Server) gameOptions(sess *store.Session, rnd game.RandomSource) game.Options {
	return game.Options{
		Rand:            rnd,
		Now:             s.now,
		OnSave:          func(st game.State) { s.persist(sess, st) },
		OnGameOver:      func(h game.HighScore) { s.archive(sess, h) },
		SellNeedsDouble: s.sellNeedsDouble,
	}
}

// persist is the engine's save hook. Failures are logged, not surfaced;
// the live game stays authoritative.
func (s *Server) persist(sess *store.Session, st game.State) {
	err := s.saves.Put(context.Background(), store.Saved{
		ID:     sess.Game.ID,
		Player: sess.Player,
		Owner:  sess.Owner,
		Daily:  sess.Daily,
		Seed:   sess.Seed,
		State:  st,
	})
	if err != nil {
		log.Warn().Err(err).Str("gameId", sess.Game.ID).Msg("save game")
	}
	s.hub.publish(sess.Game.ID, envelope{Type: "state", Payload: viewOf(sess.Game)})
}

// archive is the engine's game-over hook.
func (s *Server) archive(sess *store.Session, h game.HighScore) {
	ctx := context.Background()
	rec := scores.HighScore{Score: h.Score, At: h.At, MapID: h.MapID, Player: sess.Player}
	s.ledger.Add(rec)
	if err := s.scores.Insert(ctx, rec); err != nil {
		log.Warn().Err(err).Str("gameId", sess.Game.ID).Msg("insert high score")
	} else if _, err := s.scores.Prune(ctx, scores.Capacity); err != nil {
		log.Warn().Err(err).Msg("prune high scores")
	}
	if sess.Daily != "" && sess.Owner != "" {
		if err := s.daily.InsertResult(ctx, dailyResult(sess, h)); err != nil {
			log.Warn().Err(err).Str("gameId", sess.Game.ID).Msg("insert daily result")
		}
	}
	log.Info().Str("gameId", sess.Game.ID).Str("map", h.MapID).Int("score", h.Score).Msg("game over")
}

// session finds a live session or resumes it from its last save.
func (s *Server) session(ctx context.Context, id string) (*store.Session, error) {
	if sess, err := s.store.Get(ctx, id); err == nil {
		return sess, nil
	}
	s.resumeMu.Lock()
	defer s.resumeMu.Unlock()
	if sess, err := s.store.Get(ctx, id); err == nil {
		return sess, nil
	}
	saved, err := s.saves.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	b, err := maps.Board(saved.State.MapID)
	if err != nil {
		return nil, err
	}
	sess := store.NewSession(nil, saved.Player, saved.Owner)
	sess.Daily = saved.Daily
	sess.Seed = saved.Seed
	rnd := game.Replay(saved.Seed, len(saved.State.History))
	g, err := game.Resume(saved.ID, b, saved.State, s.gameOptions(sess, rnd))
	if err != nil {
		return nil, err
	}
	sess.Game = g
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	log.Info().Str("gameId", id).Msg("resumed game from save")
	return sess, nil
}

// withSession resolves {id} and holds the session lock for the handler.
func (s *Server) withSession(fn func(http.ResponseWriter, *http.Request, *store.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		sess.Lock()
		defer sess.Unlock()
		fn(w, r, sess)
	}
}

// ------------------------------- handlers ----------------------------------

type newGameReq struct {
	Map  string  `json:"map"`
	Seed *uint64 `json:"seed"`
}

// handleNewGame starts a game awaiting its starting castle.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeBody(r, &req); err != nil {
		badJSON(w)
		return
	}
	player, owner := s.identity(w, r)
	sess := store.NewSession(nil, player, owner)
	sess.Seed = rand.Uint64()
	if req.Seed != nil {
		sess.Seed = *req.Seed
	}
	sess, err := s.newSession(r.Context(), req.Map, sess)
	if err != nil {
		writeErr(w, err)
		return
	}
	log.Info().Str("gameId", sess.Game.ID).Str("map", sess.Game.State().MapID).Msg("new game")
	writeJSON(w, http.StatusCreated, viewOf(sess.Game))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	writeJSON(w, http.StatusOK, viewOf(sess.Game))
}

type movesRes struct {
	Moves         []game.Move `json:"moves"`
	HasValidMoves bool        `json:"hasValidMoves"`
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	moves := sess.Game.Moves()
	if moves == nil {
		moves = []game.Move{}
	}
	writeJSON(w, http.StatusOK, movesRes{Moves: moves, HasValidMoves: len(moves) > 0})
}

type startReq struct {
	CellID int `json:"cellId"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	var req startReq
	if err := decodeBody(r, &req); err != nil {
		badJSON(w)
		return
	}
	s.respond(w, sess, sess.Game.ChooseStart(req.CellID))
}

type markReq struct {
	CellID    int `json:"cellId"`
	NumberDie int `json:"numberDie"`
	ColorDie  int `json:"colorDie"`
}

type markRes struct {
	Result game.MarkResult `json:"result"`
	Game   gameView        `json:"game"`
}

func (s *Server) handleMark(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	var req markReq
	if err := decodeBody(r, &req); err != nil {
		badJSON(w)
		return
	}
	res, err := sess.Game.MarkHex(req.CellID, req.NumberDie, req.ColorDie)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, markRes{Result: res, Game: viewOf(sess.Game)})
}

type monkReq struct {
	ColorDie int           `json:"colorDie"`
	Color    hexgrid.Color `json:"color"`
}

func (s *Server) handleMonk(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	var req monkReq
	if err := decodeBody(r, &req); err != nil {
		badJSON(w)
		return
	}
	s.respond(w, sess, sess.Game.UseMonk(req.ColorDie, req.Color))
}

type workerReq struct {
	NumberDie int `json:"numberDie"`
	Number    int `json:"number"`
}

func (s *Server) handleWorker(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	var req workerReq
	if err := decodeBody(r, &req); err != nil {
		badJSON(w)
		return
	}
	s.respond(w, sess, sess.Game.UseWorker(req.NumberDie, req.Number))
}

func (s *Server) handleSilver(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	s.respond(w, sess, sess.Game.UseSilver())
}

type sellRes struct {
	Sold int      `json:"sold"`
	Game gameView `json:"game"`
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	n, err := sess.Game.SellCommodities()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sellRes{Sold: n, Game: viewOf(sess.Game)})
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	s.respond(w, sess, sess.Game.EndTurn())
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	s.respond(w, sess, sess.Game.Undo())
}

// respond writes the game view, or the engine error.
func (s *Server) respond(w http.ResponseWriter, sess *store.Session, err error) {
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess.Game))
}
