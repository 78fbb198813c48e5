// Package store provides storage backends for Hearth.
//
// This file implements a PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/hearthplan/hearth/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) AddEvent(event models.Event) error {
	_, err := s.db.Exec(
		`INSERT INTO events (id, child_name, event_name, date, time, location, notes, is_all_day, no_time_yet) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.ChildName, event.EventName, event.Date, event.Time, event.Location, event.Notes, event.IsAllDay, event.NoTimeYet)
	if err != nil {
		slog.Error("PostgresStore AddEvent failed", "error", err, "eventName", event.EventName)
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetEvents() ([]models.Event, error) {
	rows, err := s.db.Query(`SELECT id, child_name, event_name, date, time, location, notes, is_all_day, no_time_yet FROM events`)
	if err != nil {
		slog.Error("PostgresStore GetEvents query failed", "error", err)
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.ChildName, &e.EventName, &e.Date, &e.Time, &e.Location, &e.Notes, &e.IsAllDay, &e.NoTimeYet); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}
	return events, nil
}

func (s *PostgresStore) AddKeeper(keeper models.Keeper) error {
	_, err := s.db.Exec(
		`INSERT INTO keepers (id, child_name, event_name, date, time, location, notes, is_all_day, no_time_yet) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		keeper.ID, keeper.ChildName, keeper.EventName, keeper.Date, keeper.Time, keeper.Location, keeper.Notes, keeper.IsAllDay, keeper.NoTimeYet)
	if err != nil {
		slog.Error("PostgresStore AddKeeper failed", "error", err, "eventName", keeper.EventName)
		return fmt.Errorf("failed to insert keeper: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetKeepers() ([]models.Keeper, error) {
	rows, err := s.db.Query(`SELECT id, child_name, event_name, date, time, location, notes, is_all_day, no_time_yet FROM keepers`)
	if err != nil {
		slog.Error("PostgresStore GetKeepers query failed", "error", err)
		return nil, fmt.Errorf("failed to query keepers: %w", err)
	}
	defer rows.Close()

	var keepers []models.Keeper
	for rows.Next() {
		var k models.Keeper
		if err := rows.Scan(&k.ID, &k.ChildName, &k.EventName, &k.Date, &k.Time, &k.Location, &k.Notes, &k.IsAllDay, &k.NoTimeYet); err != nil {
			return nil, fmt.Errorf("failed to scan keeper row: %w", err)
		}
		keepers = append(keepers, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate keeper rows: %w", err)
	}
	return keepers, nil
}

func (s *PostgresStore) AddMessage(msg models.ChatMessage) error {
	eventJSON, err := marshalMessageEvent(msg)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO messages (id, sender, content, type, event_json, time) VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ID, msg.Sender, msg.Content, msg.Type, eventJSON, msg.Time)
	if err != nil {
		slog.Error("PostgresStore AddMessage failed", "error", err, "id", msg.ID)
		return fmt.Errorf("failed to insert message %s: %w", msg.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetMessages() ([]models.ChatMessage, error) {
	rows, err := s.db.Query(`SELECT id, sender, content, type, event_json, time FROM messages ORDER BY time`)
	if err != nil {
		slog.Error("PostgresStore GetMessages query failed", "error", err)
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}
	return messages, nil
}

func (s *PostgresStore) RemoveMessageByID(id string) error {
	res, err := s.db.Exec(`DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		slog.Error("PostgresStore RemoveMessageByID failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete message %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("message %s not found", id)
	}
	return nil
}

func (s *PostgresStore) AddChild(child models.Child) error {
	_, err := s.db.Exec(`INSERT INTO children (id, name) VALUES ($1, $2)`, child.ID, child.Name)
	if err != nil {
		slog.Error("PostgresStore AddChild failed", "error", err, "name", child.Name)
		return fmt.Errorf("failed to insert child: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetChildren() ([]models.Child, error) {
	rows, err := s.db.Query(`SELECT id, name FROM children`)
	if err != nil {
		slog.Error("PostgresStore GetChildren query failed", "error", err)
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

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	return s.db.Close()
}
