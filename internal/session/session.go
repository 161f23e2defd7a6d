// Package session maps live connections to participant identities.
package session

import (
	"errors"
	"sync"
)

// ErrDuplicateSession indicates a connection already created a character.
// Character creation rejects duplicates instead of silently overwriting.
var ErrDuplicateSession = errors.New("session already exists for connection")

// ErrNotFound indicates no session exists for the connection.
var ErrNotFound = errors.New("session not found")

// Character is a participant's character sheet.
type Character struct {
	Class     string
	HP        int
	Inventory []string
}

// Session is one connected participant's identity and current room.
type Session struct {
	Username  string
	Character Character
	Room      string
}

// Directory tracks sessions keyed by connection ID. Entries are only mutated
// through Directory methods; reads return copies so narrator context built
// from a snapshot cannot race with inventory updates.
type Directory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewDirectory creates an empty session directory.
func NewDirectory() *Directory {
	return &Directory{sessions: make(map[string]*Session)}
}

// Create initializes a session with an empty inventory. Returns
// ErrDuplicateSession when the connection already has one.
func (d *Directory) Create(connID, username, class string, maxHP int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.sessions[connID]; ok {
		return ErrDuplicateSession
	}

	d.sessions[connID] = &Session{
		Username: username,
		Character: Character{
			Class:     class,
			HP:        maxHP,
			Inventory: []string{},
		},
	}
	return nil
}

// Get returns a snapshot of the session for connID. The inventory slice is
// copied, so the snapshot stays stable even if the session mutates.
func (d *Directory) Get(connID string) (Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	sess, ok := d.sessions[connID]
	if !ok {
		return Session{}, false
	}
	return snapshot(sess), true
}

// SetRoom records the participant's current room.
func (d *Directory) SetRoom(connID, roomID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	sess, ok := d.sessions[connID]
	if !ok {
		return ErrNotFound
	}
	sess.Room = roomID
	return nil
}

// GrantItem appends an item to the participant's inventory and returns a copy
// of the updated inventory.
func (d *Directory) GrantItem(connID, item string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sess, ok := d.sessions[connID]
	if !ok {
		return nil, ErrNotFound
	}
	sess.Character.Inventory = append(sess.Character.Inventory, item)

	inv := make([]string, len(sess.Character.Inventory))
	copy(inv, sess.Character.Inventory)
	return inv, nil
}

// Remove deletes the session for connID. No-op when absent.
func (d *Directory) Remove(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, connID)
}

func snapshot(sess *Session) Session {
	inv := make([]string, len(sess.Character.Inventory))
	copy(inv, sess.Character.Inventory)

	copied := *sess
	copied.Character.Inventory = inv
	return copied
}
