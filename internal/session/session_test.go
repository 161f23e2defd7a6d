package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGet(t *testing.T) {
	d := NewDirectory()

	err := d.Create("conn-1", "alice", "wizard", 12)
	require.NoError(t, err)

	sess, ok := d.Get("conn-1")
	require.True(t, ok)
	assert.Equal(t, "alice", sess.Username)
	assert.Equal(t, "wizard", sess.Character.Class)
	assert.Equal(t, 12, sess.Character.HP)
	assert.Empty(t, sess.Character.Inventory)
	assert.Equal(t, "", sess.Room)
}

func TestCreateRejectsDuplicate(t *testing.T) {
	d := NewDirectory()

	require.NoError(t, d.Create("conn-1", "alice", "wizard", 12))
	err := d.Create("conn-1", "alice2", "rogue", 8)
	assert.ErrorIs(t, err, ErrDuplicateSession)

	// The original session survives.
	sess, ok := d.Get("conn-1")
	require.True(t, ok)
	assert.Equal(t, "alice", sess.Username)
}

func TestGetUnknownConnection(t *testing.T) {
	d := NewDirectory()

	_, ok := d.Get("ghost")
	assert.False(t, ok)
}

func TestSetRoom(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Create("conn-1", "alice", "wizard", 12))

	require.NoError(t, d.SetRoom("conn-1", "tavern"))
	sess, _ := d.Get("conn-1")
	assert.Equal(t, "tavern", sess.Room)

	assert.ErrorIs(t, d.SetRoom("ghost", "tavern"), ErrNotFound)
}

func TestGrantItem(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Create("conn-1", "alice", "wizard", 12))

	inv, err := d.GrantItem("conn-1", "Rusty Sword")
	require.NoError(t, err)
	assert.Equal(t, []string{"Rusty Sword"}, inv)

	inv, err = d.GrantItem("conn-1", "Gold Coin")
	require.NoError(t, err)
	assert.Equal(t, []string{"Rusty Sword", "Gold Coin"}, inv)

	_, err = d.GrantItem("ghost", "Potion of Healing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetReturnsInventoryCopy(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Create("conn-1", "alice", "wizard", 12))
	_, err := d.GrantItem("conn-1", "Rusty Sword")
	require.NoError(t, err)

	snap, _ := d.Get("conn-1")
	snap.Character.Inventory[0] = "tampered"

	fresh, _ := d.Get("conn-1")
	assert.Equal(t, []string{"Rusty Sword"}, fresh.Character.Inventory)
}

func TestRemove(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Create("conn-1", "alice", "wizard", 12))

	d.Remove("conn-1")
	_, ok := d.Get("conn-1")
	assert.False(t, ok)

	// Removing again is harmless.
	d.Remove("conn-1")
}

func TestConcurrentAccess(t *testing.T) {
	d := NewDirectory()

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("conn-%d", n)
			require.NoError(t, d.Create(id, fmt.Sprintf("player-%d", n), "fighter", 10))
			_, err := d.GrantItem(id, "Gold Coin")
			require.NoError(t, err)
			_, ok := d.Get(id)
			require.True(t, ok)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		sess, ok := d.Get(fmt.Sprintf("conn-%d", i))
		require.True(t, ok)
		assert.Len(t, sess.Character.Inventory, 1)
	}
}
