package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/burgundy/apps/go-server/assets"
	"github.com/robalobadob/burgundy/apps/go-server/internal/game"
	"github.com/robalobadob/burgundy/apps/go-server/internal/hexgrid"
	"github.com/robalobadob/burgundy/apps/go-server/internal/maps"
	"github.com/robalobadob/burgundy/apps/go-server/internal/scores"
	"github.com/robalobadob/burgundy/apps/go-server/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	schema, err := fs.ReadFile(assets.Migrations(), "sql/001_init.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	s := New(store.NewMemoryStore(), db)
	s.now = func() time.Time { return time.Date(2026, 4, 5, 9, 0, 0, 0, time.UTC) }
	return s
}

func do(t *testing.T, s *Server, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, rec)["error"]
}

func newGame(t *testing.T, s *Server, mapID string) gameView {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/game/new", `{"map":"`+mapID+`","seed":3}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[gameView](t, rec)
}

func firstCastle(t *testing.T, mapID string) int {
	b, err := maps.Board(mapID)
	require.NoError(t, err)
	return b.CellsOfColor(hexgrid.Green)[0]
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGameLifecycle(t *testing.T) {
	s := newTestServer(t)
	v := newGame(t, s, "A")
	assert.Equal(t, game.StatusAwaitingStart, v.Status)
	assert.Equal(t, "A", v.State.MapID)
	base := "/game/" + v.GameID

	rec := do(t, s, http.MethodPost, base+"/mark", `{"cellId":7,"numberDie":1,"colorDie":1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "not_started", errCode(t, rec))

	rec = do(t, s, http.MethodPost, base+"/start", `{"cellId":13}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v = decode[gameView](t, rec)
	assert.Equal(t, game.StatusInTurn, v.Status)
	assert.Equal(t, 1, v.State.Resources.Silver)
	assert.False(t, v.CanUndo)
	assert.Nil(t, v.State.Undo)

	rec = do(t, s, http.MethodPost, base+"/undo", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "no_snapshot", errCode(t, rec))

	rec = do(t, s, http.MethodPost, base+"/silver", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[gameView](t, rec).CanUndo)

	rec = do(t, s, http.MethodPost, base+"/silver", "")
	assert.Equal(t, "no_resource", errCode(t, rec))

	rec = do(t, s, http.MethodPost, base+"/undo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[gameView](t, rec).State.Resources.Silver)

	rec = do(t, s, http.MethodGet, base+"/moves", "")
	require.Equal(t, http.StatusOK, rec.Code)
	moves := decode[movesRes](t, rec)
	assert.Equal(t, len(moves.Moves) > 0, moves.HasValidMoves)
	if moves.HasValidMoves {
		m := moves.Moves[0]
		body, _ := json.Marshal(markReq{CellID: m.CellID, NumberDie: m.NumberDie, ColorDie: m.ColorDie})
		rec = do(t, s, http.MethodPost, base+"/mark", string(body))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := decode[markRes](t, rec)
		assert.Equal(t, 1, res.Game.State.PlacedThisTurn)
	}

	rec = do(t, s, http.MethodPost, base+"/mark", `{"cellId":0,"numberDie":3,"colorDie":1}`)
	assert.Equal(t, "bad_die", errCode(t, rec))

	rec = do(t, s, http.MethodPost, base+"/worker", `{"numberDie":1,"number":4}`)
	assert.Equal(t, "no_resource", errCode(t, rec))

	rec = do(t, s, http.MethodPost, base+"/monk", `{"colorDie":1,"color":"teal"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_json", errCode(t, rec))

	rec = do(t, s, http.MethodPost, base+"/sell", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[sellRes](t, rec).Sold)

	rec = do(t, s, http.MethodPost, base+"/end", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[gameView](t, rec).State.Turn)
}

func TestUnknownGameAndMap(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/game/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errCode(t, rec))

	rec = do(t, s, http.MethodPost, "/game/new", `{"map":"Q"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_map", errCode(t, rec))

	rec = do(t, s, http.MethodPost, "/game/new", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, maps.Default, decode[gameView](t, rec).State.MapID)
}

func TestFullGameIsArchived(t *testing.T) {
	s := newTestServer(t)
	v := newGame(t, s, "C")
	base := "/game/" + v.GameID
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, base+"/start", `{"cellId":`+itoa(firstCastle(t, "C"))+`}`).Code)

	var rec *httptest.ResponseRecorder
	for i := 0; i < game.TurnsPerPhase*game.Phases; i++ {
		rec = do(t, s, http.MethodPost, base+"/end", "")
		require.Equal(t, http.StatusOK, rec.Code, "turn %d: %s", i, rec.Body.String())
	}
	v = decode[gameView](t, rec)
	assert.Equal(t, game.StatusGameOver, v.Status)
	assert.GreaterOrEqual(t, v.State.Resources.Workers, 24)

	rec = do(t, s, http.MethodPost, base+"/end", "")
	assert.Equal(t, "game_over", errCode(t, rec))

	rec = do(t, s, http.MethodGet, "/scores", "")
	require.Equal(t, http.StatusOK, rec.Code)
	top := decode[[]scores.HighScore](t, rec)
	require.Len(t, top, 1)
	assert.Equal(t, "C", top[0].MapID)

	rec = do(t, s, http.MethodGet, "/scores?map=C", "")
	require.Len(t, decode[[]scores.HighScore](t, rec), 1)
	rec = do(t, s, http.MethodGet, "/scores?map=A", "")
	assert.Empty(t, decode[[]scores.HighScore](t, rec))
}

func TestResumeFromSave(t *testing.T) {
	s := newTestServer(t)
	v := newGame(t, s, "D")
	base := "/game/" + v.GameID
	rec := do(t, s, http.MethodPost, base+"/start", `{"cellId":`+itoa(firstCastle(t, "D"))+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	before := decode[gameView](t, rec)

	require.NoError(t, s.store.Delete(context.Background(), v.GameID))

	rec = do(t, s, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	after := decode[gameView](t, rec)
	assert.Equal(t, before.State, after.State)

	_, err := s.store.Get(context.Background(), v.GameID)
	assert.NoError(t, err, "resumed game is live again")
}

func TestDailySharesMapAndDice(t *testing.T) {
	s := newTestServer(t)
	ana := &http.Cookie{Name: anonCookieName, Value: "anon-ana"}
	bo := &http.Cookie{Name: anonCookieName, Value: "anon-bo"}

	rec := do(t, s, http.MethodPost, "/daily/new", "", ana)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[dailyNewRes](t, rec)
	assert.Equal(t, "2026-04-05", first.Date)
	assert.Contains(t, maps.IDs(), first.Map)

	rec = do(t, s, http.MethodPost, "/daily/new", "", ana)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first.GameID, decode[dailyNewRes](t, rec).GameID)

	rec = do(t, s, http.MethodPost, "/daily/new", "", bo)
	other := decode[dailyNewRes](t, rec)
	assert.NotEqual(t, first.GameID, other.GameID)
	assert.Equal(t, first.Map, other.Map)

	start := `{"cellId":` + itoa(firstCastle(t, first.Map)) + `}`
	a := decode[gameView](t, do(t, s, http.MethodPost, "/game/"+first.GameID+"/start", start))
	b := decode[gameView](t, do(t, s, http.MethodPost, "/game/"+other.GameID+"/start", start))
	assert.Equal(t, a.State.Dice, b.State.Dice)

	rec = do(t, s, http.MethodGet, "/daily/leaderboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestResumedGamesKeepTheirDice(t *testing.T) {
	s := newTestServer(t)
	ana := &http.Cookie{Name: anonCookieName, Value: "anon-ana"}
	bo := &http.Cookie{Name: anonCookieName, Value: "anon-bo"}
	a := decode[dailyNewRes](t, do(t, s, http.MethodPost, "/daily/new", "", ana))
	b := decode[dailyNewRes](t, do(t, s, http.MethodPost, "/daily/new", "", bo))
	seeded := newGame(t, s, a.Map)
	twin := newGame(t, s, a.Map)

	start := `{"cellId":` + itoa(firstCastle(t, a.Map)) + `}`
	for _, id := range []string{a.GameID, b.GameID, seeded.GameID, twin.GameID} {
		require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/game/"+id+"/start", start).Code)
	}

	for turn := 2; turn <= 5; turn++ {
		// drop one game of each pair so it is reloaded from its save
		require.NoError(t, s.store.Delete(context.Background(), a.GameID))
		require.NoError(t, s.store.Delete(context.Background(), seeded.GameID))

		dice := func(id string) game.Dice {
			rec := do(t, s, http.MethodPost, "/game/"+id+"/end", "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			return decode[gameView](t, rec).State.Dice
		}
		assert.Equal(t, dice(b.GameID), dice(a.GameID), "daily turn %d", turn)
		assert.Equal(t, dice(twin.GameID), dice(seeded.GameID), "seeded turn %d", turn)
	}
}

func TestDailyResultRecordedOnGameOver(t *testing.T) {
	s := newTestServer(t)
	ana := &http.Cookie{Name: anonCookieName, Value: "anon-ana"}
	d := decode[dailyNewRes](t, do(t, s, http.MethodPost, "/daily/new", "", ana))
	base := "/game/" + d.GameID
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, base+"/start", `{"cellId":`+itoa(firstCastle(t, d.Map))+`}`).Code)
	for i := 0; i < game.TurnsPerPhase*game.Phases; i++ {
		require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, base+"/end", "").Code)
	}

	rec := do(t, s, http.MethodPost, "/daily/new", "", ana)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dailyNewRes](t, rec).Played)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/auth/signup", `{"username":"castellan","password":"burgundy!"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	rec = do(t, s, http.MethodPost, "/auth/signup", `{"username":"Castellan","password":"burgundy!"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodGet, "/auth/me", "", cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "castellan", decode[authUser](t, rec).Username)

	rec = do(t, s, http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodPost, "/auth/login", `{"username":"castellan","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodPost, "/auth/login", `{"username":"castellan","password":"burgundy!"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, "/auth/signup", `{"username":"x","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMapsRoutes(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/maps", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]mapSummary](t, rec)
	require.Len(t, list, 4)
	assert.Equal(t, 37, list[0].Cells)

	rec = do(t, s, http.MethodGet, "/maps/B", "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[mapDetail](t, rec)
	assert.Len(t, detail.Cells, 37)

	rec = do(t, s, http.MethodGet, "/maps/Z", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebsocketPushesState(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	v := newGame(t, s, "A")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/" + v.GameID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	type msg struct {
		Type    string   `json:"type"`
		Payload gameView `json:"payload"`
	}
	read := func() msg {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var m msg
		require.NoError(t, conn.ReadJSON(&m))
		return m
	}

	m := read()
	assert.Equal(t, "state", m.Type)
	assert.Equal(t, game.StatusAwaitingStart, m.Payload.Status)

	require.Eventually(t, func() bool { return s.hub.count(v.GameID) == 1 }, time.Second, 10*time.Millisecond)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/game/"+v.GameID+"/start", `{"cellId":26}`).Code)

	m = read()
	assert.Equal(t, game.StatusInTurn, m.Payload.Status)
	assert.Equal(t, 1, m.Payload.State.Resources.Monks)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return s.hub.count(v.GameID) == 0 }, time.Second, 10*time.Millisecond)
}

func TestLedgerWarmsFromDatabase(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	at := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := range 3 {
		require.NoError(t, s.scores.Insert(ctx, scores.HighScore{Score: 10 * i, At: at.Add(time.Duration(i) * time.Hour), MapID: "A"}))
	}

	warm := New(store.NewMemoryStore(), s.db)
	assert.Equal(t, 3, warm.ledger.Len())
	assert.Equal(t, 20, warm.ledger.Recent()[0].Score)
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
