// Package session is the client-side persisted state: a small sqlite-backed
// key-value store holding the session identity, and the resolver that
// decodes a customer identity out of it.
package session

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/username/portview/src/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrKeyNotFound is returned by Get when the key has never been set.
var ErrKeyNotFound = errors.New("session: key not found")

// Store is the persisted client-side key-value store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at the given path and applies schema
// migrations.
func Open(databasePath string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", databasePath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store at %s: %w", databasePath, err)
	}

	// Limit open connections to 1 for SQLite to avoid locking issues
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping session store: %w", err)
	}

	if err := runMigrations(db, databasePath); err != nil {
		db.Close()
		return nil, err
	}

	logger.L.Debug("Session store opened", "path", databasePath)
	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB, databasePath string) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create sqlite migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, databasePath, driver)
	if err != nil {
		return fmt.Errorf("migration instance creation failed: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.L.Debug("No new session store migrations to apply.")
			return nil
		}
		return fmt.Errorf("failed to apply session store migrations: %w", err)
	}
	logger.L.Debug("Session store migrations applied.")
	return nil
}

// Get returns the stored value for key, or ErrKeyNotFound.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session_values WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session store read failed for key %s: %w", key, err)
	}
	return value, nil
}

// Set stores or replaces the value for key.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO session_values (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at;
	`, key, value)
	if err != nil {
		return fmt.Errorf("session store write failed for key %s: %w", key, err)
	}
	return nil
}

// Delete removes a key; deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM session_values WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("session store delete failed for key %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
