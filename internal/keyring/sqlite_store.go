package keyring

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// SQLiteStore persists credentials in a local SQLite database.
// Token and user profile live in a two-row key-value table and are
// written and deleted inside a single transaction.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create credentials dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open credentials db: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS credentials (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init credentials schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Read loads the stored credentials.
// Returns ErrNotFound when no token row exists.
func (s *SQLiteStore) Read() (*Credentials, error) {
	var token []byte
	err := s.db.QueryRow(`SELECT value FROM credentials WHERE key = ?`, keyToken).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}

	var user []byte
	err = s.db.QueryRow(`SELECT value FROM credentials WHERE key = ?`, keyUser).Scan(&user)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read user profile: %w", err)
	}

	return &Credentials{
		Token: string(token),
		User:  json.RawMessage(user),
	}, nil
}

// Write stores both values in one transaction.
func (s *SQLiteStore) Write(creds *Credentials) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.Exec(upsert, keyToken, []byte(creds.Token)); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if _, err := tx.Exec(upsert, keyUser, []byte(creds.User)); err != nil {
		return fmt.Errorf("write user profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit write: %w", err)
	}
	return nil
}

// Delete clears both values in one transaction.
func (s *SQLiteStore) Delete() error {
	if _, err := s.db.Exec(`DELETE FROM credentials`); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
