// Package rooms owns the shared per-room narrative state.
//
// Locking is two-level: the Registry mutex guards the structure of the room
// map (insert/delete), and each Room carries its own mutex guarding story and
// members. Acquisition order is always structural lock first, then content
// lock, never the reverse. Neither lock is ever held across a narrator call.
package rooms

import (
	"sync"
	"time"
)

// Opening lines for the two room-creation paths.
const (
	openingNarration = "A new adventure begins in a vast world of magic and mystery."
	openingJoin      = "A new party forms. What adventures await?"
)

// Room is a named shared narrative context. All access to its fields goes
// through Registry methods; the struct is never handed to callers.
type Room struct {
	mu      sync.Mutex
	story   string
	members map[string]struct{}
}

// Registry maps room IDs to live rooms. Rooms are created lazily and deleted
// the moment their member set empties.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	// now is swappable for tests that assert on story entries.
	now func() time.Time
}

// NewRegistry creates an empty room registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		now:   time.Now,
	}
}

// ensure returns the room for id, creating it with the given opening line
// when absent. Callers must hold r.mu.
func (r *Registry) ensure(id, opening string) *Room {
	room, ok := r.rooms[id]
	if !ok {
		room = &Room{
			story:   opening,
			members: make(map[string]struct{}),
		}
		r.rooms[id] = room
	}
	return room
}

// Ensure creates the room for id if it does not exist yet. Used by the
// narration path, which may target a room no one has joined.
func (r *Registry) Ensure(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensure(id, openingNarration)
}

// Join ensures the room exists and adds username to its member set. The
// structural lock is held across the member add: releasing it first would let
// a concurrent Leave of the last member delete the room out from under the
// joiner, stranding the join on an orphaned room.
func (r *Registry) Join(id, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.ensure(id, openingJoin)
	room.mu.Lock()
	room.members[username] = struct{}{}
	room.mu.Unlock()
}

// Leave removes username from the room's member set, deleting the room when
// it empties. No-op when the room or member is absent.
func (r *Registry) Leave(id, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return
	}

	room.mu.Lock()
	delete(room.members, username)
	empty := len(room.members) == 0
	room.mu.Unlock()

	if empty {
		delete(r.rooms, id)
	}
}

// AppendEntry appends a timestamped entry to the room's story. A room that
// vanished between classification and narration is an accepted race, so the
// append degrades to a no-op rather than an error.
func (r *Registry) AppendEntry(id, entry string) {
	r.mu.Lock()
	room, ok := r.rooms[id]
	r.mu.Unlock()
	if !ok {
		return
	}

	room.mu.Lock()
	room.story += "\n" + r.now().Format("15:04") + ": " + entry
	room.mu.Unlock()
}

// Story returns the room's full story text. The second return is false when
// the room does not exist.
func (r *Registry) Story(id string) (string, bool) {
	r.mu.Lock()
	room, ok := r.rooms[id]
	r.mu.Unlock()
	if !ok {
		return "", false
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	return room.story, true
}

// StorySuffix returns at most maxChars characters from the end of the room's
// story, for snapshotting to a newly joined participant.
func (r *Registry) StorySuffix(id string, maxChars int) string {
	story, ok := r.Story(id)
	if !ok {
		return ""
	}

	runes := []rune(story)
	if len(runes) <= maxChars {
		return story
	}
	return string(runes[len(runes)-maxChars:])
}

// MemberCount returns the current number of members in the room, zero when
// the room does not exist.
func (r *Registry) MemberCount(id string) int {
	r.mu.Lock()
	room, ok := r.rooms[id]
	r.mu.Unlock()
	if !ok {
		return 0
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	return len(room.members)
}

// Snapshot returns the member count of every live room. The result is a
// fresh map; callers never see the mutable member sets.
func (r *Registry) Snapshot() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[string]int, len(r.rooms))
	for id, room := range r.rooms {
		room.mu.Lock()
		counts[id] = len(room.members)
		room.mu.Unlock()
	}
	return counts
}
