// Package models defines conversation mode types to avoid circular imports.
package models

// ConversationMode represents the active conversational mode. Exactly one is
// active at a time; INTRO is the only initial mode.
type ConversationMode string

// Conversation mode constants.
const (
	ModeIntro        ConversationMode = "INTRO"
	ModeFlow         ConversationMode = "FLOW"
	ModeConfirmation ConversationMode = "CONFIRMATION"
	ModeSignup       ConversationMode = "SIGNUP"
)

// IsValidMode checks if the given mode is supported.
func IsValidMode(m ConversationMode) bool {
	switch m {
	case ModeIntro, ModeFlow, ModeConfirmation, ModeSignup:
		return true
	default:
		return false
	}
}
