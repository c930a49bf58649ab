// Package store provides SQLite persistence for events, claims,
// corroborations and score snapshots.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// Store handles SQLite persistence. All methods are safe for concurrent use
// via an internal mutex. Events and corroborations are append-only: no
// UPDATE or DELETE statement for them exists anywhere in this package.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates a Store at the given path, creating tables as needed.
// Uses WAL mode for file-based databases.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so all pooled connections see the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		entity TEXT NOT NULL,
		category TEXT NOT NULL,
		headline TEXT,
		payload TEXT,
		observed_at DATETIME NOT NULL,
		ingested_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity, observed_at);
	CREATE INDEX IF NOT EXISTS idx_events_observed ON events(observed_at);

	CREATE TABLE IF NOT EXISTS claims (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		entity TEXT NOT NULL,
		category TEXT NOT NULL,
		text TEXT NOT NULL,
		payload TEXT,
		dedup_key TEXT NOT NULL,
		artifact_ref TEXT,
		refs TEXT,
		engagement INTEGER DEFAULT 0,
		credibility INTEGER DEFAULT 0,
		status TEXT NOT NULL,
		confirmed_by TEXT,
		debunked_by TEXT,
		confidence REAL DEFAULT 0,
		time_sensitive INTEGER DEFAULT 0,
		deadline DATETIME,
		created_at DATETIME NOT NULL,
		evaluated_at DATETIME NOT NULL,
		version INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_claims_entity ON claims(entity, status);
	CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status);
	CREATE INDEX IF NOT EXISTS idx_claims_dedup ON claims(dedup_key);

	CREATE TABLE IF NOT EXISTS corroborations (
		id TEXT PRIMARY KEY,
		claim_id TEXT NOT NULL,
		event_id TEXT NOT NULL,
		relation TEXT NOT NULL,
		confidence REAL NOT NULL,
		basis TEXT,
		created_at DATETIME NOT NULL,
		UNIQUE(claim_id, event_id, relation)
	);

	CREATE INDEX IF NOT EXISTS idx_corr_claim ON corroborations(claim_id);

	CREATE TABLE IF NOT EXISTS scores (
		as_of DATETIME PRIMARY KEY,
		funding_stress INTEGER NOT NULL,
		enforcement_heat INTEGER NOT NULL,
		deliverability_stress INTEGER NOT NULL,
		composite REAL NOT NULL,
		label TEXT NOT NULL,
		cascade INTEGER NOT NULL,
		degraded INTEGER NOT NULL,
		computed_at DATETIME NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
