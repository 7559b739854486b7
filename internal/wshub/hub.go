package wshub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// ServerMessage is the JSON envelope sent to clients.
type ServerMessage struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	PlayerID string
	Name     string
	Conn     *websocket.Conn
	Send     chan []byte
}

// WritePump reads from the Send channel and writes to the WebSocket
// connection until the channel is closed or the context ends.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Enqueue marshals and queues a message on this client's send channel,
// dropping it when the channel is full. Works before the client is
// registered with any hub.
func (c *Client) Enqueue(event string, payload any) {
	data, err := json.Marshal(ServerMessage{Event: event, Payload: payload})
	if err != nil {
		zap.S().Errorw("marshaling message", "event", event, "err", err)
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

// Hub manages one room's WebSocket connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.PlayerID] = c
}

// Unregister removes a client from the hub. The Send channel stays
// open: the connection handler may still queue error replies on it,
// and the write pump exits with the connection context instead.
func (h *Hub) Unregister(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, playerID)
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to every client in the room. Non-blocking:
// drops for clients whose channel is full.
func (h *Hub) Broadcast(event string, payload any) {
	data, err := json.Marshal(ServerMessage{Event: event, Payload: payload})
	if err != nil {
		zap.S().Errorw("marshaling broadcast", "event", event, "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.Send <- data:
		default:
			// Drop message if channel full
		}
	}
}

// Send delivers an event to a single client, typically an error or a
// join acknowledgement.
func (h *Hub) Send(playerID, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if c, ok := h.clients[playerID]; ok {
		c.Enqueue(event, payload)
	}
}
