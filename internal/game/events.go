package game

// Wire-level event names sent to clients.
const (
	EventMessage         = "message"
	EventCharacterUpdate = "character_update"
	EventRoomUpdate      = "room_update"
)

// Fixed sender identities for system and narrator messages.
const (
	senderSystem   = "System"
	senderNarrator = "Narrator"
)

// MessageEvent is a chat or narration line delivered to clients.
type MessageEvent struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// CharacterUpdateEvent carries a participant's updated inventory.
type CharacterUpdateEvent struct {
	Inventory []string `json:"inventory"`
}

// RoomInfo describes one room in a room-list snapshot.
type RoomInfo struct {
	Players int `json:"players"`
}

// RoomUpdateEvent is the room-list snapshot broadcast to all connections.
type RoomUpdateEvent struct {
	Rooms map[string]RoomInfo `json:"rooms"`
}

// Inbound payload shapes. Field names are the client contract.

type createCharacterPayload struct {
	Username  string `json:"username" validate:"required"`
	CharClass string `json:"charClass" validate:"required"`
	MaxHP     int    `json:"maxHP" validate:"gte=1"`
}

type joinPayload struct {
	Room string `json:"room"`
}

type messagePayload struct {
	Message string `json:"message"`
}
