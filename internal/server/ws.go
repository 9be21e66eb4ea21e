package server

import (
	"encoding/json"
	"log"
	"net/http"

	"facewriter/internal/workspace"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	EnableCompression: true,
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload workspace.Event `json:"payload"`
}

// eventHub fans tool state transitions out to every connected client of a
// session. Broadcast is non-blocking: a slow client drops events rather
// than stalling the workspace.
type eventHub struct {
	clients    map[*wsClient]bool
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *wsClient
	done       chan struct{}
}

type wsClient struct {
	hub  *eventHub
	conn *websocket.Conn
	send chan []byte
}

func newHub() *eventHub {
	return &eventHub{
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		done:       make(chan struct{}),
	}
}

func (h *eventHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}

func (h *eventHub) stop() {
	close(h.done)
}

// add registers a client unless the hub has already stopped. Without the
// done guard a register racing session deletion would block forever.
func (h *eventHub) add(c *wsClient) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// broadcastEvent is the workspace notify hook. It runs with the workspace
// lock held, so it must only enqueue.
func (h *eventHub) broadcastEvent(ev workspace.Event) {
	msg, err := json.Marshal(wsMessage{Type: "tool_state", Payload: ev})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		// Hub backlog full; the client can recover via GET state.
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, sess *session) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	client := &wsClient{hub: sess.hub, conn: conn, send: make(chan []byte, 16)}
	if !sess.hub.add(client) {
		conn.Close()
		return
	}

	go client.writeLoop()
	client.readLoop()
}

func (c *wsClient) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readLoop discards inbound frames; the socket is push-only. It exists to
// observe the close handshake.
func (c *wsClient) readLoop() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
