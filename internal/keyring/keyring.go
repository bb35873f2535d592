// Package keyring persists the session token and user profile across
// application restarts. The profile stays an opaque JSON blob at this layer;
// both values are always written together and cleared together.
package keyring

import (
	"encoding/json"
	"errors"
	"sync"
)

// ErrNotFound is returned by Read when no credentials are stored.
var ErrNotFound = errors.New("no stored credentials")

// Credentials is the pair of values the client persists between runs.
type Credentials struct {
	// Token is the opaque bearer token issued at login.
	Token string `json:"token"`
	// User is the JSON-serialized user profile, opaque to the store.
	User json.RawMessage `json:"user"`
}

// Store reads and writes the persisted session credentials.
// Implementations must treat Write and Delete as all-or-nothing over
// both values.
type Store interface {
	Read() (*Credentials, error)
	Write(creds *Credentials) error
	Delete() error
}

// Memory is an in-memory Store for tests and non-persistent sessions.
type Memory struct {
	mu    sync.Mutex
	creds *Credentials
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Read returns the stored credentials, or ErrNotFound.
func (m *Memory) Read() (*Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds == nil {
		return nil, ErrNotFound
	}
	copied := *m.creds
	return &copied, nil
}

// Write stores the credentials.
func (m *Memory) Write(creds *Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *creds
	m.creds = &copied
	return nil
}

// Delete clears the stored credentials.
func (m *Memory) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = nil
	return nil
}
