package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/letterdrop/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024 * 16,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

var clientSeq atomic.Uint64

// Client is one connected viewer.
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames and tuning events out to every connected viewer.
type Hub struct {
	clients    map[uint64]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint64]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Message is the envelope for everything the server pushes.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Run owns client registration until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			log.Println("[WS] Hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] Viewer %d connected (viewers=%d)", client.id, count)

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.id]; ok && cur == client {
				delete(h.clients, client.id)
				close(client.send)
				log.Printf("[WS] Viewer %d disconnected (viewers=%d)", client.id, len(h.clients))
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a message to every viewer. Viewers whose buffer is full
// miss the message.
func (h *Hub) Broadcast(msgType string, data interface{}) {
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		log.Printf("[WS] Error marshaling %s message: %v", msgType, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.send <- payload:
		default:
			log.Printf("[WS] Send buffer full for viewer %d, dropping %s", client.id, msgType)
		}
	}
}

// BroadcastFrame is the frame hook handed to the simulation worker.
func (h *Hub) BroadcastFrame(frame game.Frame) {
	h.Broadcast("frame", frame)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades a viewer connection, greets it with the current
// tuning and board, then streams frames.
func HandleWebSocket(hub *Hub, sim *game.Simulation) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			id:   clientSeq.Add(1),
			hub:  hub,
			conn: conn,
			send: make(chan []byte, 256),
		}

		settings := sim.Settings()
		client.sendMessage("hello", gin.H{
			"settings": settings.Entries(),
			"bounds":   sim.Bounds(),
			"frame":    sim.Snapshot(),
		})

		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// sendTo queues a message for a viewer from its own read loop. The send
// channel is only closed by that loop's unregister or by hub shutdown, which
// closes done first.
func (h *Hub) sendTo(c *Client, msgType string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	select {
	case <-h.done:
		return
	default:
	}
	c.sendMessage(msgType, data)
}

// sendMessage queues directly; only safe before the client is registered
// or while the hub lock is held.
func (c *Client) sendMessage(msgType string, data interface{}) {
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		log.Printf("[WS] Error marshaling %s message: %v", msgType, err)
		return
	}
	select {
	case c.send <- payload:
	default:
		log.Printf("[WS] Send buffer full for viewer %d, dropping %s", c.id, msgType)
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for viewer %d: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for viewer %d: %v", c.id, err)
				return
			}
		}
	}
}

// readPump keeps the connection alive. Viewers are read-only; anything but
// an application ping is ignored.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close for viewer %d: %v", c.id, err)
			}
			break
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			c.hub.sendTo(c, "pong", nil)
		}
	}
}
