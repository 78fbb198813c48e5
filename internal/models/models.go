// Package models defines the core data structures for Hearth.
//
// It includes finalized event and keeper records, chat transcript messages,
// and the API response envelope shared across modules.
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Message sender constants.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// MessageTypeEventConfirmation marks a chat message that carries a finalized
// event record instead of plain content.
const MessageTypeEventConfirmation = "event_confirmation"

// DateLayout is the wire format for event dates.
const DateLayout = "2006-01-02"

// Error variables for better error handling and testability
var (
	ErrNoActiveThread = errors.New("no active conversation thread")
	ErrTurnInFlight   = errors.New("a turn is already in flight")
	ErrEmptyRecord    = errors.New("record has no fields set")
)

// Event is a finalized scheduled activity. It is created once, at the moment
// a model reply yields a parsable event object merged with tracked fields,
// and never mutated afterwards.
type Event struct {
	ID        string `json:"id,omitempty"`
	ChildName string `json:"childName,omitempty"`
	EventName string `json:"eventName,omitempty"`
	Date      string `json:"date,omitempty"` // yyyy-MM-dd
	Time      string `json:"time,omitempty"`
	Location  string `json:"location,omitempty"`
	Notes     string `json:"notes,omitempty"`
	IsAllDay  bool   `json:"isAllDay,omitempty"`
	NoTimeYet bool   `json:"noTimeYet,omitempty"`
}

// Keeper is a task or deadline record. Same shape family as Event but it
// represents something to get done rather than somewhere to be.
type Keeper struct {
	ID        string `json:"id,omitempty"`
	ChildName string `json:"childName,omitempty"`
	EventName string `json:"eventName,omitempty"`
	Date      string `json:"date,omitempty"` // yyyy-MM-dd
	Time      string `json:"time,omitempty"`
	Location  string `json:"location,omitempty"`
	Notes     string `json:"notes,omitempty"`
	IsAllDay  bool   `json:"isAllDay,omitempty"`
	NoTimeYet bool   `json:"noTimeYet,omitempty"`
}

// Child is a family member events and keepers can be attributed to.
type Child struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// ChatMessage is a single transcript entry at the UI boundary.
type ChatMessage struct {
	ID      string    `json:"id"`
	Sender  string    `json:"sender"` // "user" or "assistant"
	Content string    `json:"content,omitempty"`
	Type    string    `json:"type,omitempty"`
	Event   *Event    `json:"event,omitempty"`
	Time    time.Time `json:"time"`
}

// NewMessageID generates a unique chat message identifier.
func NewMessageID() string {
	return "m_" + uuid.NewString()
}

// NewThreadID generates a unique conversation thread identifier.
func NewThreadID() string {
	return "t_" + uuid.NewString()
}

// NewRecordID generates a unique event/keeper identifier.
func NewRecordID() string {
	return uuid.NewString()
}

// Validate reports whether the event carries the attributes downstream
// display expects. A failing event is still storable; callers log and let
// the UI show placeholders for missing values.
func (e *Event) Validate() error {
	if e.EventName == "" && e.Date == "" && e.Time == "" && e.Location == "" {
		return ErrEmptyRecord
	}
	return nil
}

// API Response types for consistent JSON responses

// APIStatus represents the status field of an API response.
type APIStatus string

// API status constants.
const (
	APIStatusOK    APIStatus = "ok"
	APIStatusError APIStatus = "error"
	APIStatusBusy  APIStatus = "busy"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// APIResponseBuilder provides a fluent interface for building API responses.
type APIResponseBuilder struct {
	response APIResponse
}

// NewAPIResponseBuilder creates a new APIResponseBuilder instance.
func NewAPIResponseBuilder() *APIResponseBuilder {
	return &APIResponseBuilder{}
}

// WithStatus sets the status of the API response.
func (b *APIResponseBuilder) WithStatus(status APIStatus) *APIResponseBuilder {
	b.response.Status = string(status)
	return b
}

// WithMessage sets the message of the API response.
func (b *APIResponseBuilder) WithMessage(message string) *APIResponseBuilder {
	b.response.Message = message
	return b
}

// WithResult sets the result data of the API response.
func (b *APIResponseBuilder) WithResult(result interface{}) *APIResponseBuilder {
	b.response.Result = result
	return b
}

// Build constructs and returns the final APIResponse.
func (b *APIResponseBuilder) Build() APIResponse {
	return b.response
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithResult(result).
		Build()
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusError).
		WithMessage(message).
		Build()
}

// Busy creates a busy API response for rejected overlapping turns.
func Busy(message string) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusBusy).
		WithMessage(message).
		Build()
}
