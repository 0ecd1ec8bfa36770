package event

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists events in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the event database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	query := `
    CREATE TABLE IF NOT EXISTS events (
        id TEXT PRIMARY KEY,
        app_id INTEGER NOT NULL,
        event TEXT NOT NULL,
        entity_type TEXT NOT NULL,
        entity_id TEXT NOT NULL,
        properties TEXT NOT NULL,
        event_time DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_events_entity ON events(app_id, entity_type, entity_id, event_time);
    `
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores one event, filling defaults first.
func (s *Store) Insert(e *Event) error {
	if err := e.Normalize(); err != nil {
		return err
	}
	props, err := e.marshalProperties()
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO events (id, app_id, event, entity_type, entity_id, properties, event_time)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.AppID, e.Event, e.EntityType, e.EntityID, props, e.EventTime,
	)
	return err
}

// Recent returns the most recent events for an app, newest first.
func (s *Store) Recent(appID, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT id, app_id, event, entity_type, entity_id, properties, event_time
         FROM events WHERE app_id = ? ORDER BY event_time DESC LIMIT ?`,
		appID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// Count returns the number of stored events for an app.
func (s *Store) Count(appID int) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM events WHERE app_id = ?`, appID).Scan(&n)
	return n, err
}

// AggregateProperties replays $set events in time order and returns the
// final property map per entity ID for the given entity type.
func (s *Store) AggregateProperties(appID int, entityType string) (map[string]map[string]interface{}, error) {
	rows, err := s.db.Query(
		`SELECT id, app_id, event, entity_type, entity_id, properties, event_time
         FROM events
         WHERE app_id = ? AND entity_type = ? AND event = ?
         ORDER BY event_time ASC`,
		appID, entityType, SetEvent,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}

	entities := make(map[string]map[string]interface{})
	for _, e := range events {
		props, ok := entities[e.EntityID]
		if !ok {
			props = make(map[string]interface{})
			entities[e.EntityID] = props
		}
		for k, v := range e.Properties {
			props[k] = v
		}
	}
	return entities, nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		var props string
		var ts time.Time
		if err := rows.Scan(&e.ID, &e.AppID, &e.Event, &e.EntityType, &e.EntityID, &props, &ts); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(props), &e.Properties); err != nil {
			return nil, fmt.Errorf("event %s has corrupt properties: %w", e.ID, err)
		}
		e.EventTime = ts
		events = append(events, e)
	}
	return events, rows.Err()
}
