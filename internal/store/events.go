package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rvachev/tierwatch/internal/model"
)

// InsertEvent appends an event. Fail-fast: an error here must stop the
// ingest path for the item, never be swallowed.
func (s *Store) InsertEvent(ev model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("encode payload for event %s: %w", ev.ID, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO events (id, source, entity, category, headline, payload, observed_at, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.Source, ev.Entity, ev.Category, ev.Headline, string(payload), ev.ObservedAt.UTC(), ev.IngestedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert event %s (source %s): %w", ev.ID, ev.Source, err)
	}
	return nil
}

// EventsByEntity returns events for an entity observed within [from, to].
func (s *Store) EventsByEntity(entity string, from, to time.Time) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, source, entity, category, headline, payload, observed_at, ingested_at
		FROM events
		WHERE entity = ? AND observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at
	`, entity, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("query events for %s: %w", entity, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// EventsObservedBetween returns all events observed within [from, to].
// Used for point-in-time risk computation.
func (s *Store) EventsObservedBetween(from, to time.Time) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, source, entity, category, headline, payload, observed_at, ingested_at
		FROM events
		WHERE observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetEvent returns a single event by ID.
func (s *Store) GetEvent(id string) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, source, entity, category, headline, payload, observed_at, ingested_at
		FROM events WHERE id = ?
	`, id)

	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("event %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return ev, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var ev model.Event
	var payload sql.NullString

	err := row.Scan(&ev.ID, &ev.Source, &ev.Entity, &ev.Category, &ev.Headline,
		&payload, &ev.ObservedAt, &ev.IngestedAt)
	if err != nil {
		return nil, err
	}

	if payload.Valid && payload.String != "" && payload.String != "null" {
		if err := json.Unmarshal([]byte(payload.String), &ev.Payload); err != nil {
			return nil, fmt.Errorf("decode payload for event %s: %w", ev.ID, err)
		}
	}
	return &ev, nil
}

func scanEvents(rows *sql.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}
