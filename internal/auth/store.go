package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Record is the credential record for one user session.
//
// ExpiresAt is always derived as issued_at + expires_in at the moment of
// issuance or refresh, never recomputed from a stale base.
type Record struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64 // epoch seconds after which AccessToken is invalid
}

// Store persists a single credential record.
//
// Implementations guarantee that Save and Clear act on all fields together so
// no partially written record is ever observable.
type Store interface {
	Save(record Record) error
	Load() (Record, bool, error) // second return reports whether a record exists
	Clear() error
}

// SQLiteStore persists the credential record in a single-row SQLite table,
// surviving process restarts the way browser localStorage survives reloads.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store backed by the given database connection.
// The credentials table must exist (see shared.RunMigrations).
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save overwrites the credential record in one statement.
func (s *SQLiteStore) Save(record Record) error {
	_, err := s.db.Exec(`
		INSERT INTO credentials (id, access_token, refresh_token, expiry_epoch_seconds, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expiry_epoch_seconds = excluded.expiry_epoch_seconds,
			updated_at = excluded.updated_at`,
		record.AccessToken, record.RefreshToken, record.ExpiresAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// Load retrieves the credential record, reporting absence without error.
func (s *SQLiteStore) Load() (Record, bool, error) {
	var record Record
	err := s.db.QueryRow(`
		SELECT access_token, refresh_token, expiry_epoch_seconds
		FROM credentials WHERE id = 1`).
		Scan(&record.AccessToken, &record.RefreshToken, &record.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to load credentials: %w", err)
	}
	return record, true, nil
}

// Clear removes the credential record wholesale.
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM credentials WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory [Store] for tests and ephemeral sessions.
type MemoryStore struct {
	mu     sync.RWMutex
	record Record
	exists bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = record
	s.exists = true
	return nil
}

func (s *MemoryStore) Load() (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record, s.exists, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = Record{}
	s.exists = false
	return nil
}
