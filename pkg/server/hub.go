package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/chazu/welltube/pkg/scene"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 8
)

const (
	eventFrame = "frame"
	eventScene = "scene"
)

// event is the websocket message envelope. Frame events carry the
// animation state; scene events tell clients to refetch /api/scene.
type event struct {
	Type  string       `json:"type"`
	Frame *scene.Frame `json:"frame,omitempty"`
}

// clientMessage is what browsers may send: currently only viewport resizes.
type clientMessage struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *client) readLoop(onMessage func([]byte)) {
	defer c.close()
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		onMessage(msg)
	}
}

func (c *client) writeLoop() {
	defer c.close()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

// hub fans events out to connected clients. Slow clients miss frames
// rather than stalling the driver.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*client]struct{})}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) broadcast(ev event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.close()
	}
}

var upgrader = websocket.Upgrader{
	// The frontend may be served from a dev server on another port.
	CheckOrigin: func(*http.Request) bool { return true },
}

func (s *Server) handleWS(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return nil
	}

	cl := newClient(conn)
	s.hub.add(cl)
	defer s.hub.remove(cl)
	s.log.Info("websocket client connected", "remote", c.Request().RemoteAddr)

	f := s.scene.Snapshot()
	if msg, err := json.Marshal(event{Type: eventFrame, Frame: &f}); err == nil {
		cl.send <- msg
	}

	go cl.readLoop(s.handleClientMessage)
	cl.writeLoop()
	s.log.Info("websocket client disconnected", "remote", c.Request().RemoteAddr)
	return nil
}

func (s *Server) handleClientMessage(msg []byte) {
	var m clientMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		s.log.Debug("ignoring websocket message", "err", err)
		return
	}
	if m.Type == "resize" {
		if err := s.scene.Resize(m.Width, m.Height); err != nil {
			s.log.Debug("ignoring resize", "err", err)
		}
	}
}
