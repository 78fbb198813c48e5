// Package flow provides error classification for model transport failures.
package flow

import (
	"strings"
)

// TransportErrorCategory buckets a model transport failure into one of a
// small set of user-facing categories.
type TransportErrorCategory string

// Transport error category constants.
const (
	CategoryAuth    TransportErrorCategory = "auth"
	CategoryNetwork TransportErrorCategory = "network"
	CategoryBlocked TransportErrorCategory = "blocked"
	CategoryGeneric TransportErrorCategory = "generic"
)

// User-facing messages per category. Exactly one of these is surfaced to the
// transcript per failed turn.
var categoryMessages = map[TransportErrorCategory]string{
	CategoryAuth:    "I couldn't reach my assistant service because of a configuration problem. Please check the API key setup.",
	CategoryNetwork: "I'm having trouble reaching the network right now. Please try again in a moment.",
	CategoryBlocked: "It looks like a browser extension or network filter is blocking my requests. Try disabling blockers for this site.",
	CategoryGeneric: "Something went wrong while I was thinking about that. Please try again.",
}

var authSubstrings = []string{"api key", "apikey", "401", "unauthorized", "authentication", "invalid_api_key"}
var networkSubstrings = []string{"timeout", "deadline exceeded", "connection refused", "connection reset", "network", "no such host", "dns"}
var blockedSubstrings = []string{"cors", "blocked by client", "err_blocked", "failed to fetch"}

// ClassifyTransportError maps a transport failure to its category and the
// single user-facing message to append to the transcript.
func ClassifyTransportError(err error) (TransportErrorCategory, string) {
	msg := strings.ToLower(err.Error())
	for _, s := range authSubstrings {
		if strings.Contains(msg, s) {
			return CategoryAuth, categoryMessages[CategoryAuth]
		}
	}
	for _, s := range networkSubstrings {
		if strings.Contains(msg, s) {
			return CategoryNetwork, categoryMessages[CategoryNetwork]
		}
	}
	for _, s := range blockedSubstrings {
		if strings.Contains(msg, s) {
			return CategoryBlocked, categoryMessages[CategoryBlocked]
		}
	}
	return CategoryGeneric, categoryMessages[CategoryGeneric]
}
