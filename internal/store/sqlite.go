// Package store provides storage backends for Hearth.
//
// This file implements an SQLite-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/hearthplan/hearth/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) AddEvent(event models.Event) error {
	_, err := s.db.Exec(
		`INSERT INTO events (id, child_name, event_name, date, time, location, notes, is_all_day, no_time_yet) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.ChildName, event.EventName, event.Date, event.Time, event.Location, event.Notes, event.IsAllDay, event.NoTimeYet)
	if err != nil {
		slog.Error("SQLiteStore AddEvent failed", "error", err, "eventName", event.EventName)
		return fmt.Errorf("failed to insert event: %w", err)
	}
	slog.Debug("SQLiteStore AddEvent succeeded", "id", event.ID, "eventName", event.EventName)
	return nil
}

func (s *SQLiteStore) GetEvents() ([]models.Event, error) {
	rows, err := s.db.Query(`SELECT id, child_name, event_name, date, time, location, notes, is_all_day, no_time_yet FROM events`)
	if err != nil {
		slog.Error("SQLiteStore GetEvents query failed", "error", err)
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.ChildName, &e.EventName, &e.Date, &e.Time, &e.Location, &e.Notes, &e.IsAllDay, &e.NoTimeYet); err != nil {
			slog.Error("SQLiteStore GetEvents scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}
	slog.Debug("SQLiteStore GetEvents succeeded", "count", len(events))
	return events, nil
}

func (s *SQLiteStore) AddKeeper(keeper models.Keeper) error {
	_, err := s.db.Exec(
		`INSERT INTO keepers (id, child_name, event_name, date, time, location, notes, is_all_day, no_time_yet) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		keeper.ID, keeper.ChildName, keeper.EventName, keeper.Date, keeper.Time, keeper.Location, keeper.Notes, keeper.IsAllDay, keeper.NoTimeYet)
	if err != nil {
		slog.Error("SQLiteStore AddKeeper failed", "error", err, "eventName", keeper.EventName)
		return fmt.Errorf("failed to insert keeper: %w", err)
	}
	slog.Debug("SQLiteStore AddKeeper succeeded", "id", keeper.ID)
	return nil
}

func (s *SQLiteStore) GetKeepers() ([]models.Keeper, error) {
	rows, err := s.db.Query(`SELECT id, child_name, event_name, date, time, location, notes, is_all_day, no_time_yet FROM keepers`)
	if err != nil {
		slog.Error("SQLiteStore GetKeepers query failed", "error", err)
		return nil, fmt.Errorf("failed to query keepers: %w", err)
	}
	defer rows.Close()

	var keepers []models.Keeper
	for rows.Next() {
		var k models.Keeper
		if err := rows.Scan(&k.ID, &k.ChildName, &k.EventName, &k.Date, &k.Time, &k.Location, &k.Notes, &k.IsAllDay, &k.NoTimeYet); err != nil {
			slog.Error("SQLiteStore GetKeepers scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan keeper row: %w", err)
		}
		keepers = append(keepers, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate keeper rows: %w", err)
	}
	slog.Debug("SQLiteStore GetKeepers succeeded", "count", len(keepers))
	return keepers, nil
}

func (s *SQLiteStore) AddMessage(msg models.ChatMessage) error {
	eventJSON, err := marshalMessageEvent(msg)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO messages (id, sender, content, type, event_json, time) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.Sender, msg.Content, msg.Type, eventJSON, msg.Time)
	if err != nil {
		slog.Error("SQLiteStore AddMessage failed", "error", err, "id", msg.ID)
		return fmt.Errorf("failed to insert message %s: %w", msg.ID, err)
	}
	slog.Debug("SQLiteStore AddMessage succeeded", "id", msg.ID, "sender", msg.Sender)
	return nil
}

func (s *SQLiteStore) GetMessages() ([]models.ChatMessage, error) {
	rows, err := s.db.Query(`SELECT id, sender, content, type, event_json, time FROM messages ORDER BY time`)
	if err != nil {
		slog.Error("SQLiteStore GetMessages query failed", "error", err)
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			slog.Error("SQLiteStore GetMessages scan failed", "error", err)
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}
	slog.Debug("SQLiteStore GetMessages succeeded", "count", len(messages))
	return messages, nil
}

func (s *SQLiteStore) RemoveMessageByID(id string) error {
	res, err := s.db.Exec(`DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		slog.Error("SQLiteStore RemoveMessageByID failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete message %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("message %s not found", id)
	}
	slog.Debug("SQLiteStore RemoveMessageByID succeeded", "id", id)
	return nil
}

func (s *SQLiteStore) AddChild(child models.Child) error {
	_, err := s.db.Exec(`INSERT INTO children (id, name) VALUES (?, ?)`, child.ID, child.Name)
	if err != nil {
		slog.Error("SQLiteStore AddChild failed", "error", err, "name", child.Name)
		return fmt.Errorf("failed to insert child: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetChildren() ([]models.Child, error) {
	rows, err := s.db.Query(`SELECT id, name FROM children`)
	if err != nil {
		slog.Error("SQLiteStore GetChildren query failed", "error", err)
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		var c models.Child
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan child row: %w", err)
		}
		children = append(children, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate child rows: %w", err)
	}
	return children, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}

// marshalMessageEvent serializes the optional event payload of a message.
func marshalMessageEvent(msg models.ChatMessage) (interface{}, error) {
	if msg.Event == nil {
		return nil, nil
	}
	data, err := json.Marshal(msg.Event)
	if err != nil {
		slog.Error("marshalMessageEvent failed", "error", err, "id", msg.ID)
		return nil, fmt.Errorf("failed to marshal message event: %w", err)
	}
	return string(data), nil
}
