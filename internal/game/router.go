// Package game routes inbound participant events: it echoes chat to room
// peers, classifies actions, invokes the narrator, and applies story and
// character effects.
package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fableforge/fableforge/internal/dice"
	"github.com/fableforge/fableforge/internal/narrator"
	"github.com/fableforge/fableforge/internal/pubsub"
	"github.com/fableforge/fableforge/internal/rooms"
	"github.com/fableforge/fableforge/internal/session"
	"github.com/fableforge/fableforge/internal/topics"
)

// lootTable is the fixed pool drawn from when narration implies found loot.
var lootTable = []string{"Potion of Healing", "Rusty Sword", "Gold Coin", "Magic Scroll"}

// Transport is the connection-delivery collaborator the router speaks to.
// The websocket bridge implements it; tests substitute a recorder.
type Transport interface {
	// Join subscribes a connection to a room's broadcasts.
	Join(connID, roomID string)
	// Leave unsubscribes a connection from a room's broadcasts.
	Leave(connID, roomID string)
	// Broadcast delivers an event to every connection in a room, optionally
	// excluding one connection. Broadcasting to an empty room is a no-op.
	Broadcast(roomID, event string, payload any, excludeConnID string)
	// SendTo delivers an event to a single connection.
	SendTo(connID, event string, payload any)
	// BroadcastGlobal delivers an event to every connection.
	BroadcastGlobal(event string, payload any)
}

// Deps holds the services the router requires.
type Deps struct {
	Subscriber pubsub.Subscriber
	Transport  Transport
	Registry   *rooms.Registry
	Sessions   *session.Directory
	Narrator   narrator.Narrator
	Roller     *dice.Roller

	// DefaultRoom is joined when a join event names no room.
	DefaultRoom string
}

// Router is the event-handling core of the game.
type Router struct {
	subscriber  pubsub.Subscriber
	transport   Transport
	registry    *rooms.Registry
	sessions    *session.Directory
	narrator    narrator.Narrator
	roller      *dice.Roller
	defaultRoom string

	validate *validator.Validate
	logger   *slog.Logger

	// async controls whether narration runs on its own goroutine. Tests set
	// it to false for deterministic sequencing.
	async bool
}

// NewRouter creates the game router.
func NewRouter(deps Deps) *Router {
	return &Router{
		subscriber:  deps.Subscriber,
		transport:   deps.Transport,
		registry:    deps.Registry,
		sessions:    deps.Sessions,
		narrator:    deps.Narrator,
		roller:      deps.Roller,
		defaultRoom: deps.DefaultRoom,
		validate:    validator.New(),
		logger:      slog.Default().With("service", "game"),
		async:       true,
	}
}

// Start subscribes the router to its topics. Each inbound event is handled on
// its own goroutine so one participant's slow turn never stalls the bus.
func (r *Router) Start(ctx context.Context) error {
	subscriptions := map[string]pubsub.Handler{
		topics.CharacterCreate:    r.handleCreateCharacter,
		topics.RoomJoin:           r.handleJoin,
		topics.RoomLeave:          r.handleLeave,
		topics.GameMessage:        r.handleMessage,
		topics.ClientDisconnected: r.handleDisconnect,
	}

	for topic, handler := range subscriptions {
		h := handler
		err := r.subscriber.Subscribe(ctx, topic, func(ctx context.Context, msg pubsub.Message) error {
			go func() {
				if err := h(ctx, msg); err != nil {
					r.logger.Error("Event handler failed", "topic", msg.Topic, "connID", msg.ConnID, "error", err)
				}
			}()
			return nil
		})
		if err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
	}

	r.logger.Info("Game router started", "default_room", r.defaultRoom)
	return nil
}

func (r *Router) handleCreateCharacter(ctx context.Context, msg pubsub.Message) error {
	var payload createCharacterPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshaling create_character: %w", err)
	}
	if err := r.validate.Struct(payload); err != nil {
		r.transport.SendTo(msg.ConnID, EventMessage, MessageEvent{
			Username: senderSystem,
			Message:  "Character needs a name, a class, and at least 1 HP.",
		})
		return nil
	}

	err := r.sessions.Create(msg.ConnID, payload.Username, payload.CharClass, payload.MaxHP)
	if err != nil {
		// Duplicate creation is rejected, not overwritten.
		r.transport.SendTo(msg.ConnID, EventMessage, MessageEvent{
			Username: senderSystem,
			Message:  "You already have a character.",
		})
		return nil
	}

	if err := r.sessions.SetRoom(msg.ConnID, r.defaultRoom); err != nil {
		return err
	}

	r.transport.SendTo(msg.ConnID, EventCharacterUpdate, CharacterUpdateEvent{Inventory: []string{}})
	return nil
}

func (r *Router) handleJoin(ctx context.Context, msg pubsub.Message) error {
	sess, ok := r.sessions.Get(msg.ConnID)
	if !ok {
		r.transport.SendTo(msg.ConnID, EventMessage, MessageEvent{
			Username: senderSystem,
			Message:  "Create a character first!",
		})
		return nil
	}

	var payload joinPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshaling join: %w", err)
	}

	roomID := payload.Room
	if roomID == "" {
		roomID = r.defaultRoom
	}

	// Moving between rooms detaches from the old one so its member count
	// stays truthful.
	if sess.Room != "" && sess.Room != roomID {
		r.transport.Leave(msg.ConnID, sess.Room)
		r.registry.Leave(sess.Room, sess.Username)
	}

	if err := r.sessions.SetRoom(msg.ConnID, roomID); err != nil {
		return err
	}
	r.transport.Join(msg.ConnID, roomID)
	r.registry.Join(roomID, sess.Username)

	r.transport.Broadcast(roomID, EventMessage, MessageEvent{
		Username: senderSystem,
		Message:  fmt.Sprintf("%s joins %s! The tale unfolds...", sess.Username, roomID),
	}, "")
	r.broadcastRoomList()

	suffix := r.registry.StorySuffix(roomID, 500)
	r.transport.SendTo(msg.ConnID, EventMessage, MessageEvent{
		Username: senderNarrator,
		Message:  fmt.Sprintf("Current tale: %s...", suffix),
	})
	return nil
}

func (r *Router) handleLeave(ctx context.Context, msg pubsub.Message) error {
	sess, ok := r.sessions.Get(msg.ConnID)
	if !ok || sess.Room == "" {
		return nil
	}

	roomID := sess.Room
	r.transport.Leave(msg.ConnID, roomID)
	r.registry.Leave(roomID, sess.Username)
	if err := r.sessions.SetRoom(msg.ConnID, ""); err != nil {
		return err
	}

	// If the room just emptied this reaches no one, which is fine.
	r.transport.Broadcast(roomID, EventMessage, MessageEvent{
		Username: senderSystem,
		Message:  fmt.Sprintf("%s departs the realm.", sess.Username),
	}, "")
	r.broadcastRoomList()
	return nil
}

func (r *Router) handleMessage(ctx context.Context, msg pubsub.Message) error {
	sess, ok := r.sessions.Get(msg.ConnID)
	if !ok || sess.Room == "" {
		// No character yet; discard.
		return nil
	}

	var payload messagePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshaling message: %w", err)
	}
	if payload.Message == "" {
		return nil
	}

	// Echo to room peers; the sender already rendered their own line.
	r.transport.Broadcast(sess.Room, EventMessage, MessageEvent{
		Username: sess.Username,
		Message:  payload.Message,
	}, msg.ConnID)

	if !IsAction(payload.Message) {
		return nil
	}

	if r.async {
		go r.narrate(ctx, msg.ConnID, sess, payload.Message)
	} else {
		r.narrate(ctx, msg.ConnID, sess, payload.Message)
	}
	return nil
}

// narrate runs the narrator turn for an action message. It snapshots the
// story before the external call and appends after it; no room lock is held
// while the call is in flight.
func (r *Router) narrate(ctx context.Context, connID string, sess session.Session, action string) {
	roomID := sess.Room
	r.registry.Ensure(roomID)
	story, _ := r.registry.Story(roomID)

	playerContext := fmt.Sprintf("Player: %s, Character: class=%s hp=%d inventory=[%s]",
		sess.Username, sess.Character.Class, sess.Character.HP,
		strings.Join(sess.Character.Inventory, ", "))

	res, err := r.narrator.Narrate(ctx, story, action, playerContext)
	if err != nil {
		r.logger.Warn("Narrator call failed", "room", roomID, "error", err)
		// The failure stays in-narrative; the story itself is untouched.
		r.transport.Broadcast(roomID, EventMessage, MessageEvent{
			Username: senderNarrator,
			Message:  fmt.Sprintf("Narrator error: %v - the tale pauses for a moment.", err),
		}, "")
		return
	}

	r.registry.AppendEntry(roomID, res.Text)

	if res.GrantItem {
		item := r.roller.Pick(lootTable)
		if inventory, err := r.sessions.GrantItem(connID, item); err == nil {
			r.transport.SendTo(connID, EventCharacterUpdate, CharacterUpdateEvent{Inventory: inventory})
		}
	}

	r.transport.Broadcast(roomID, EventMessage, MessageEvent{
		Username: senderNarrator,
		Message:  res.Text,
	}, "")
}

func (r *Router) handleDisconnect(ctx context.Context, msg pubsub.Message) error {
	sess, ok := r.sessions.Get(msg.ConnID)
	if !ok {
		return nil
	}

	if sess.Room != "" {
		r.registry.Leave(sess.Room, sess.Username)
		r.transport.Broadcast(sess.Room, EventMessage, MessageEvent{
			Username: senderSystem,
			Message:  fmt.Sprintf("%s departs the realm.", sess.Username),
		}, "")
		r.broadcastRoomList()
	}

	r.sessions.Remove(msg.ConnID)
	return nil
}

// broadcastRoomList sends the current non-empty room snapshot to every
// connection, not just the affected room.
func (r *Router) broadcastRoomList() {
	counts := r.registry.Snapshot()
	update := RoomUpdateEvent{Rooms: make(map[string]RoomInfo, len(counts))}
	for id, players := range counts {
		if players > 0 {
			update.Rooms[id] = RoomInfo{Players: players}
		}
	}
	r.transport.BroadcastGlobal(EventRoomUpdate, update)
}
