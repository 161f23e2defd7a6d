// Package topics names the pub/sub channels shared between the websocket
// bridge and the game module.
package topics

// Inbound client events, published by the bridge as they arrive.
const (
	CharacterCreate = "client.character.create"
	RoomJoin        = "client.room.join"
	RoomLeave       = "client.room.leave"
	GameMessage     = "client.game.message"
)

// System events.
const (
	// ClientDisconnected fires after a websocket connection closes, so the
	// game module can evict the session and its room membership.
	ClientDisconnected = "system.client.disconnected"
)

// inboundEvents maps the wire-level event names clients send to bus topics.
var inboundEvents = map[string]string{
	"create_character": CharacterCreate,
	"join":             RoomJoin,
	"leave":            RoomLeave,
	"message":          GameMessage,
}

// ForEvent resolves a client event name to its bus topic.
func ForEvent(event string) (string, bool) {
	topic, ok := inboundEvents[event]
	return topic, ok
}
