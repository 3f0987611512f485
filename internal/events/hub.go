// Package events broadcasts advisory mutation notifications to a user's
// other active sessions over WebSocket. Delivery is at-most-once and
// best-effort: the UI uses it as a refresh hint, and nothing in the data
// path depends on a notification arriving.
package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is the payload pushed to a user's sessions after a ledger mutation.
type Event struct {
	Type   string    `json:"type"`
	Kinds  []string  `json:"kinds,omitempty"`
	At     time.Time `json:"at"`
	userID string
}

// LedgerChanged builds the standard post-mutation event.
func LedgerChanged(uid string, kinds []string) Event {
	return Event{Type: "ledger.changed", Kinds: kinds, At: time.Now(), userID: uid}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub manages WebSocket clients grouped by user and fans events out to the
// owning user's sessions only.
type Hub struct {
	clients    map[string]map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once
	log        *slog.Logger
}

// Client represents one connected session.
type Client struct {
	hub  *Hub
	uid  string
	conn *websocket.Conn
	send chan []byte
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub's event loop. Should be called as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			sessions := h.clients[client.uid]
			if sessions == nil {
				sessions = make(map[*Client]bool)
				h.clients[client.uid] = sessions
			}
			sessions[client] = true
			h.log.Debug("websocket client connected", "uid", client.uid, "sessions", len(sessions))

		case client := <-h.unregister:
			if sessions, ok := h.clients[client.uid]; ok {
				if _, ok := sessions[client]; ok {
					delete(sessions, client)
					close(client.send)
					if len(sessions) == 0 {
						delete(h.clients, client.uid)
					}
				}
			}

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				h.log.Warn("failed to marshal event", "error", err)
				continue
			}
			for client := range h.clients[event.userID] {
				select {
				case client.send <- data:
				default:
					// Slow consumer: drop the hint rather than block.
				}
			}
		}
	}
}

// Stop shuts the hub down.
func (h *Hub) Stop() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Publish queues an event for the user's sessions. Never blocks; if the hub
// is saturated the event is dropped.
func (h *Hub) Publish(event Event) {
	select {
	case h.broadcast <- event:
	default:
	}
}

// ServeWS upgrades an authenticated request into a hub session.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, uid string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{hub: h, uid: uid, conn: conn, send: make(chan []byte, 16)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Clients only listen; any read error ends the session.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
