package narrator

import "strings"

// Keyword heuristics over narrator replies. These are deliberately simple:
// rich parsing of narration text is out of scope.

var rollWords = []string{"roll", "attack", "check"}

var lootWords = []string{"find", "loot", "treasure"}

// ImpliesRoll reports whether the reply implies a random check, warranting a
// synthesized d20 annotation.
func ImpliesRoll(reply string) bool {
	return containsAny(reply, rollWords)
}

// ImpliesLoot reports whether the reply implies the player found an item.
func ImpliesLoot(reply string) bool {
	return containsAny(reply, lootWords)
}

func containsAny(text string, words []string) bool {
	lowered := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lowered, w) {
			return true
		}
	}
	return false
}
