// Package session owns the authenticated identity and bearer token held by
// the client, restores it from the keyring at startup, and gates all
// authenticated network access.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/shopie/shopie-cli/internal/api"
	"github.com/shopie/shopie-cli/internal/keyring"
)

// Manager holds the current session and wraps the API client with auth
// headers. It is the only path by which other components reach the network
// while authenticated.
//
// Invariant: user is non-nil if and only if token is non-empty.
type Manager struct {
	client *api.Client
	store  keyring.Store
	logger *slog.Logger

	mu       sync.Mutex
	token    string
	user     *User
	onChange []func(*User)
}

// NewManager creates a Manager and restores any persisted session from the
// store. A failed or empty read is not fatal: the manager starts anonymous.
func NewManager(client *api.Client, store keyring.Store, logger *slog.Logger) *Manager {
	m := &Manager{
		client: client,
		store:  store,
		logger: logger,
	}

	creds, err := store.Read()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("failed to load stored session, starting anonymous", "error", err)
		}
		return m
	}

	var user User
	if err := json.Unmarshal(creds.User, &user); err != nil {
		logger.Warn("stored user profile unreadable, starting anonymous", "error", err)
		return m
	}

	m.token = creds.Token
	m.user = &user
	logger.Info("session restored", "email", user.Email)
	return m
}

// Login authenticates with email and password. On success the session is
// persisted and the manager becomes authenticated; on failure the previous
// session, if any, is left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	var resp authResponse
	err := m.client.Do(ctx, http.MethodPost, "/auth/login", loginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		m.logger.Info("login failed", "email", email, "error", err)
		return err
	}

	return m.establish(&resp)
}

// Register creates an account and signs in, with the same contract as Login.
func (m *Manager) Register(ctx context.Context, name, email, password string) error {
	var resp authResponse
	err := m.client.Do(ctx, http.MethodPost, "/auth/register", registerRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		m.logger.Info("register failed", "email", email, "error", err)
		return err
	}

	return m.establish(&resp)
}

// establish persists and adopts a fresh session from an auth response.
func (m *Manager) establish(resp *authResponse) error {
	if resp.Token == "" {
		return &api.MalformedResponseError{What: "auth token"}
	}

	user := resp.User
	profile, err := json.Marshal(&user)
	if err != nil {
		return err
	}

	if err := m.store.Write(&keyring.Credentials{
		Token: resp.Token,
		User:  profile,
	}); err != nil {
		// The session is unusable across restarts without persistence,
		// so surface this instead of silently holding a memory-only session.
		return err
	}

	m.mu.Lock()
	m.token = resp.Token
	m.user = &user
	subscribers := append([]func(*User){}, m.onChange...)
	m.mu.Unlock()

	m.logger.Info("session established", "email", user.Email)
	for _, fn := range subscribers {
		fn(&user)
	}
	return nil
}

// Logout clears the persisted and in-memory session. Store deletion errors
// are logged and swallowed: the in-memory state must clear regardless.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Delete(); err != nil {
		m.logger.Warn("failed to delete stored session", "error", err)
	}

	m.mu.Lock()
	m.token = ""
	m.user = nil
	subscribers := append([]func(*User){}, m.onChange...)
	m.mu.Unlock()

	m.logger.Info("session cleared")
	for _, fn := range subscribers {
		fn(nil)
	}
}

// Do performs an authenticated request. It fails fast with ErrAuthRequired
// when no token is held; otherwise it delegates to the API client with the
// bearer header attached. Caller-supplied options are applied after the
// bearer header, so callers can still override headers.
func (m *Manager) Do(ctx context.Context, method, path string, body, out any, opts ...api.RequestOption) error {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	if token == "" {
		return ErrAuthRequired
	}

	reqOpts := append([]api.RequestOption{api.WithBearerToken(token)}, opts...)
	return m.client.Do(ctx, method, path, body, out, reqOpts...)
}

// OnSessionChange registers a callback invoked after login, register, and
// logout. The callback receives the new user, or nil when the session ended.
func (m *Manager) OnSessionChange(fn func(*User)) {
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

// User returns the current user, or nil when anonymous.
func (m *Manager) User() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	copied := *m.user
	return &copied
}

// Token returns the current bearer token, or empty when anonymous.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token != "" {
		return StateAuthenticated
	}
	return StateAnonymous
}
