package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteBackend is the durable backend: a single key-value table in a
// SQLite file.
type SQLiteBackend struct {
	db    *sql.DB
	quota int
}

// NewSQLiteBackend opens (or creates) the database at path.
func NewSQLiteBackend(path string, quotaBytes int) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite store: %w", err)
	}

	return &SQLiteBackend{db: db, quota: quotaBytes}, nil
}

func (s *SQLiteBackend) Name() string { return "persistent" }

func (s *SQLiteBackend) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *SQLiteBackend) Set(key, value string) error {
	if s.quota > 0 {
		var used int
		err := s.db.QueryRow(
			`SELECT COALESCE(SUM(LENGTH(value)), 0) FROM kv WHERE key != ?`, key,
		).Scan(&used)
		if err != nil {
			return err
		}
		if used+len(value) > s.quota {
			return ErrQuotaExceeded
		}
	}

	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *SQLiteBackend) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

// Compact reclaims space freed by deleted values. Run periodically by the
// maintenance scheduler.
func (s *SQLiteBackend) Compact() error {
	_, err := s.db.Exec(`VACUUM`)
	return err
}

func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
