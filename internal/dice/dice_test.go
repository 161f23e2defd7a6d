package dice

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollIsDeterministicForSeed(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Roll(20, 2, 3), b.Roll(20, 2, 3))
	}
}

func TestRollStaysInRange(t *testing.T) {
	r := NewSeeded(1)

	for i := 0; i < 200; i++ {
		got := r.Roll(6, 1, 0)
		assert.GreaterOrEqual(t, got, 1)
		assert.LessOrEqual(t, got, 6)
	}
}

func TestRollAppliesModifierAndCount(t *testing.T) {
	r := NewSeeded(7)

	got := r.Roll(4, 3, 5)
	assert.GreaterOrEqual(t, got, 3+5)
	assert.LessOrEqual(t, got, 12+5)
}

func TestRollWithInvalidDiceReturnsModifier(t *testing.T) {
	r := NewSeeded(0)

	assert.Equal(t, 2, r.Roll(0, 1, 2))
	assert.Equal(t, -1, r.Roll(6, 0, -1))
}

func TestD20StaysInRange(t *testing.T) {
	r := New(rand.NewSource(99))

	for i := 0; i < 100; i++ {
		got := r.D20()
		assert.GreaterOrEqual(t, got, 1)
		assert.LessOrEqual(t, got, 20)
	}
}

func TestPickDrawsFromItems(t *testing.T) {
	r := NewSeeded(3)
	items := []string{"sword", "shield", "potion"}

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		got := r.Pick(items)
		assert.Contains(t, items, got)
		seen[got] = true
	}
	// With 50 draws from 3 items, every item should have appeared.
	assert.Len(t, seen, 3)
}

func TestPickEmptyReturnsEmptyString(t *testing.T) {
	r := NewSeeded(3)
	assert.Equal(t, "", r.Pick(nil))
}
