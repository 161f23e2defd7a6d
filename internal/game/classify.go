package game

import "strings"

// Classification of inbound chat messages. A message that classifies as an
// action is forwarded to the narrator; anything else is pure chat.

var actionPrefixes = []string{"i ", "we ", "group: ", "the party "}

var actionKeywords = []string{"attack", "cast", "investigate", "roll"}

// IsAction reports whether a message warrants narrator involvement: it starts
// with an action prefix, contains an action keyword, or asks a question.
func IsAction(message string) bool {
	lowered := strings.ToLower(message)

	for _, prefix := range actionPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	for _, word := range actionKeywords {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return strings.Contains(lowered, "?")
}
