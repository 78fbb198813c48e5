// Package flow provides new-event detection for incoming user turns.
package flow

import "strings"

// EventDetector decides whether a user turn describes a new event. It is an
// interface so the keyword heuristic can later be replaced by a
// model-assisted classifier without touching the state machine.
type EventDetector interface {
	IsNewEvent(text string) bool
}

// eventTriggerKeywords are activity words that usually open a fresh event
// description.
var eventTriggerKeywords = []string{
	"practice", "game", "recital", "concert", "performance",
	"appointment", "party", "playdate", "lesson", "class",
	"birthday", "meeting", "tryout", "rehearsal", "field trip",
}

// KeywordEventDetector is the default EventDetector: a fixed keyword list
// matched case-insensitively.
type KeywordEventDetector struct{}

// IsNewEvent reports whether text contains an event trigger keyword.
func (KeywordEventDetector) IsNewEvent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range eventTriggerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
