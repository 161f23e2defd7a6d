// Package websocket bridges client connections to the event bus. The bridge
// is a dumb transport: it tracks which connections listen to which rooms and
// delivers payloads, while all game semantics live in the game module.
package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fableforge/fableforge/internal/pubsub"
	"github.com/fableforge/fableforge/internal/topics"
)

const writeTimeout = 10 * time.Second

// Client represents a single connected participant.
type Client struct {
	// ID is the unique connection identifier assigned at upgrade time.
	ID string
	// conn is the underlying WebSocket connection.
	conn *websocket.Conn
	// send is a buffered channel of outbound frames for this client.
	send chan []byte
}

// Bridge manages all WebSocket connections, their room subscriptions, and
// routes inbound frames onto the pub/sub bus.
type Bridge struct {
	publisher pubsub.Publisher

	mu      sync.RWMutex
	clients map[string]*Client
	// rooms maps room IDs to the set of subscribed connection IDs. This is
	// transport-level fan-out state, distinct from the game's member sets.
	rooms map[string]map[string]struct{}

	logger *slog.Logger
}

// NewBridge initializes a Bridge, ready to handle connections.
func NewBridge(pub pubsub.Publisher) *Bridge {
	return &Bridge{
		publisher: pub,
		clients:   make(map[string]*Client),
		rooms:     make(map[string]map[string]struct{}),
		logger:    slog.Default().With("service", "websocket"),
	}
}

// inboundFrame is the wire shape of every client frame.
type inboundFrame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// outboundFrame is the wire shape of every server frame.
type outboundFrame struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Handler returns an echo handler that upgrades requests to WebSocket
// connections and runs the read/write pumps.
func (b *Bridge) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			// In a production environment, check the origin to prevent CSRF.
			InsecureSkipVerify: true,
		})
		if err != nil {
			b.logger.Error("Failed to upgrade connection to WebSocket", "error", err)
			return c.String(http.StatusInternalServerError, "Failed to upgrade to WebSocket")
		}

		client := &Client{
			ID:   uuid.NewString(),
			conn: conn,
			send: make(chan []byte, 256),
		}
		b.register(client)
		b.logger.Info("Client connected", "connID", client.ID)

		go b.writePump(client)
		go b.readPump(client)

		return nil
	}
}

func (b *Bridge) register(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client.ID] = client
}

// unregister removes the client from every room and the client map, then
// announces the disconnect on the bus so the game module can clean up.
func (b *Bridge) unregister(client *Client) {
	b.mu.Lock()
	delete(b.clients, client.ID)
	for roomID, members := range b.rooms {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(b.rooms, roomID)
		}
	}
	close(client.send)
	b.mu.Unlock()

	msg := pubsub.Message{
		Topic:   topics.ClientDisconnected,
		ConnID:  client.ID,
		Payload: []byte("{}"),
	}
	if err := b.publisher.Publish(context.Background(), msg); err != nil {
		b.logger.Error("Failed to publish disconnect event", "connID", client.ID, "error", err)
	}
	b.logger.Info("Client disconnected", "connID", client.ID)
}

// readPump forwards frames from the connection to the bus until the
// connection dies.
func (b *Bridge) readPump(client *Client) {
	defer func() {
		b.unregister(client)
		client.conn.Close(websocket.StatusNormalClosure, "Client disconnected")
	}()

	for {
		_, raw, err := client.conn.Read(context.Background())
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				b.logger.Info("WebSocket closed normally by client", "connID", client.ID)
			} else if err != io.EOF {
				b.logger.Error("WebSocket read error", "connID", client.ID, "error", err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			b.logger.Warn("Dropping malformed frame", "connID", client.ID, "error", err)
			continue
		}

		topic, ok := topics.ForEvent(frame.Event)
		if !ok {
			b.logger.Warn("Dropping frame with unknown event", "connID", client.ID, "event", frame.Event)
			continue
		}

		msg := pubsub.Message{
			Topic:   topic,
			ConnID:  client.ID,
			Payload: frame.Payload,
		}
		if err := b.publisher.Publish(context.Background(), msg); err != nil {
			b.logger.Error("Failed to publish client frame", "connID", client.ID, "topic", topic, "error", err)
		}
	}
}

// writePump drains the client's send channel into the connection.
func (b *Bridge) writePump(client *Client) {
	defer client.conn.Close(websocket.StatusNormalClosure, "Server-side cleanup")

	for frame := range client.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := client.conn.Write(ctx, websocket.MessageText, frame)
		cancel()
		if err != nil {
			b.logger.Error("WebSocket write error", "connID", client.ID, "error", err)
			return
		}
	}
}

// Join subscribes a connection to a room's broadcasts.
func (b *Bridge) Join(connID, roomID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	members, ok := b.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		b.rooms[roomID] = members
	}
	members[connID] = struct{}{}
}

// Leave unsubscribes a connection from a room's broadcasts.
func (b *Bridge) Leave(connID, roomID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	members, ok := b.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(b.rooms, roomID)
	}
}

// Broadcast delivers an event to every connection subscribed to roomID,
// optionally excluding one connection. Unknown rooms are a no-op.
func (b *Bridge) Broadcast(roomID, event string, payload any, excludeConnID string) {
	frame, err := json.Marshal(outboundFrame{Event: event, Payload: payload})
	if err != nil {
		b.logger.Error("Failed to marshal broadcast frame", "event", event, "error", err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for connID := range b.rooms[roomID] {
		if connID == excludeConnID {
			continue
		}
		b.deliver(connID, frame)
	}
}

// SendTo delivers an event to a single connection.
func (b *Bridge) SendTo(connID, event string, payload any) {
	frame, err := json.Marshal(outboundFrame{Event: event, Payload: payload})
	if err != nil {
		b.logger.Error("Failed to marshal direct frame", "event", event, "error", err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	b.deliver(connID, frame)
}

// BroadcastGlobal delivers an event to every connection regardless of room.
func (b *Bridge) BroadcastGlobal(event string, payload any) {
	frame, err := json.Marshal(outboundFrame{Event: event, Payload: payload})
	if err != nil {
		b.logger.Error("Failed to marshal global frame", "event", event, "error", err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for connID := range b.clients {
		b.deliver(connID, frame)
	}
}

// deliver queues a frame for one connection. Callers must hold b.mu (read
// lock is enough; the send channel is its own synchronization point).
func (b *Bridge) deliver(connID string, frame []byte) {
	client, ok := b.clients[connID]
	if !ok {
		return
	}
	select {
	case client.send <- frame:
	default:
		// Drop the frame if the client's send buffer is full.
		b.logger.Warn("Client send channel full, dropping frame", "connID", connID)
	}
}
