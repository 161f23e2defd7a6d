// Package dice implements the dice-rolling mechanics used by the narrator
// and the loot system.
package dice

import (
	"math/rand"
	"sync"
)

// Roller produces pseudo-random die rolls from an injected entropy source.
// Injecting the source keeps rolls reproducible in tests.
type Roller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Roller backed by the provided source.
func New(src rand.Source) *Roller {
	return &Roller{rng: rand.New(src)}
}

// NewSeeded creates a Roller with a deterministic seed.
func NewSeeded(seed int64) *Roller {
	return New(rand.NewSource(seed))
}

// Roll returns the sum of count independent draws from [1, sides] plus
// modifier. Non-positive sides or count contribute nothing to the sum.
func (r *Roller) Roll(sides, count, modifier int) int {
	if sides < 1 || count < 1 {
		return modifier
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	total := modifier
	for i := 0; i < count; i++ {
		total += r.rng.Intn(sides) + 1
	}
	return total
}

// D20 rolls a single twenty-sided die with no modifier.
func (r *Roller) D20() int {
	return r.Roll(20, 1, 0)
}

// Pick returns one item drawn uniformly from items, or "" when items is empty.
func (r *Roller) Pick(items []string) string {
	if len(items) == 0 {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return items[r.rng.Intn(len(items))]
}
