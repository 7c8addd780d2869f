// apps/go-server/internal/httpserver/ws.go
//
// Websocket push of game state.
// GET /game/{id}/ws upgrades the connection, sends the current view, then
// forwards every saved state of that game as {"type":"state","payload":...}.
// The socket is send-only; inbound frames are read and dropped so close
// frames and pings are handled.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// hub fans saved states out to the subscribers of each game.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[*client]bool
}

func newHub() *hub { return &hub{subs: make(map[string]map[*client]bool)} }

func (h *hub) subscribe(gameID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[*client]bool)
	}
	h.subs[gameID][c] = true
}

func (h *hub) unsubscribe(gameID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set := h.subs[gameID]; set[c] {
		delete(set, c)
		close(c.send)
		if len(set) == 0 {
			delete(h.subs, gameID)
		}
	}
}

// publish never blocks; a subscriber with a full buffer is dropped.
func (h *hub) publish(gameID string, msg envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[gameID]
	if len(set) == 0 {
		return
	}
	b, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("encode ws message")
		return
	}
	for c := range set {
		select {
		case c.send <- b:
		default:
			delete(set, c)
			close(c.send)
		}
	}
}

func (h *hub) count(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[gameID])
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == clientOrigin()
	},
}

const writeWait = 10 * time.Second

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.session(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("ws upgrade")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 32)}

	sess.Lock()
	first, _ := json.Marshal(envelope{Type: "state", Payload: viewOf(sess.Game)})
	c.send <- first
	s.hub.subscribe(id, c)
	sess.Unlock()
	log.Debug().Str("gameId", id).Int("subscribers", s.hub.count(id)).Msg("ws subscribed")

	go c.writer()
	c.reader()
	s.hub.unsubscribe(id, c)
	log.Debug().Str("gameId", id).Int("subscribers", s.hub.count(id)).Msg("ws closed")
}

func (c *client) reader() {
	defer c.conn.Close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writer() {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
