package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/observability/telemetry"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 256
)

// Hub fans domain events out to the back-office sessions allowed to see them.
type Hub struct {
	// Registered clients. Only Run touches the map; mu guards reads from Count.
	clients map[*Client]bool

	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu  sync.RWMutex
	log *zap.Logger
}

type outbound struct {
	data []byte
	need domain.Permission
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	// Buffered channel of outbound messages.
	send  chan []byte
	actor *domain.Actor
}

func (c *Client) userID() string {
	if c.actor == nil {
		return ""
	}
	return c.actor.ID
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan outbound, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		log:        log,
	}
}

// Run serves the hub until ctx ends, then drops every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.drop(client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			telemetry.WebsocketClients.Inc()
			h.log.Debug("Websocket client connected", zap.String("user_id", client.userID()))
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if message.need != "" && !client.actor.Has(message.need) {
					continue
				}
				select {
				case client.send <- message.data:
				default:
					h.log.Warn("Dropping slow websocket client", zap.String("user_id", client.userID()))
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop is called with h.mu held.
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	telemetry.WebsocketClients.Dec()
}

// Broadcast queues message for every client holding need. An empty need
// reaches everyone. It returns immediately once the hub has stopped.
func (h *Hub) Broadcast(message []byte, need domain.Permission) {
	select {
	case h.broadcast <- outbound{data: message, need: need}:
	case <-h.done:
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve registers conn and blocks until the peer goes away; the fiber
// websocket handler must not return before that.
func (h *Hub) Serve(conn *websocket.Conn, actor *domain.Actor) {
	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), actor: actor}
	select {
	case h.register <- client:
	case <-h.done:
		return
	}

	go client.writePump()
	client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		// The stream is push-only; reading keeps control frames flowing.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	// The hub closed the channel.
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
