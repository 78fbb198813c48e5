// Package store provides storage backends for Hearth.
//
// It includes an in-memory store for tests and development, plus persistent
// SQLite and PostgreSQL stores behind a shared Store interface. Stores hold
// the finalized records the conversation core emits; the core never mutates
// an event or keeper after emission.
package store

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hearthplan/hearth/internal/models"
)

// Store is the storage collaborator the orchestrator and API depend on.
// Operations are append-only except for the point-delete of chat messages
// used to retire thinking placeholders.
type Store interface {
	AddEvent(event models.Event) error
	GetEvents() ([]models.Event, error)
	AddKeeper(keeper models.Keeper) error
	GetKeepers() ([]models.Keeper, error)
	AddMessage(msg models.ChatMessage) error
	GetMessages() ([]models.ChatMessage, error)
	RemoveMessageByID(id string) error
	AddChild(child models.Child) error
	GetChildren() ([]models.Child, error)
	Close() error
}

// Opts holds configuration for building a store.
type Opts struct {
	DSN string
}

// Option configures store construction.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite". File paths are
// assumed to be SQLite databases.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// InMemoryStore is a mutex-protected in-memory Store implementation.
type InMemoryStore struct {
	mu       sync.RWMutex
	events   []models.Event
	keepers  []models.Keeper
	messages []models.ChatMessage
	children []models.Child
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	slog.Debug("Creating InMemoryStore")
	return &InMemoryStore{}
}

// AddEvent appends a finalized event.
func (s *InMemoryStore) AddEvent(event models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// GetEvents returns all stored events.
func (s *InMemoryStore) GetEvents() ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

// AddKeeper appends a finalized keeper.
func (s *InMemoryStore) AddKeeper(keeper models.Keeper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keepers = append(s.keepers, keeper)
	return nil
}

// GetKeepers returns all stored keepers.
func (s *InMemoryStore) GetKeepers() ([]models.Keeper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Keeper, len(s.keepers))
	copy(out, s.keepers)
	return out, nil
}

// AddMessage appends a chat transcript message.
func (s *InMemoryStore) AddMessage(msg models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

// GetMessages returns the transcript in insertion order.
func (s *InMemoryStore) GetMessages() ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

// RemoveMessageByID deletes the message with the given ID. Removing an
// unknown ID is an error so double-removal of placeholders surfaces in logs.
func (s *InMemoryStore) RemoveMessageByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("message %s not found", id)
}

// AddChild appends a child record.
func (s *InMemoryStore) AddChild(child models.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children = append(s.children, child)
	return nil
}

// GetChildren returns all child records.
func (s *InMemoryStore) GetChildren() ([]models.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Child, len(s.children))
	copy(out, s.children)
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
