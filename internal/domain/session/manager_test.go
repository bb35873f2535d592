package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/shopie/shopie-cli/internal/api"
	"github.com/shopie/shopie-cli/internal/keyring"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// authServer answers /auth/login and /auth/register with a fixed identity,
// and rejects the configured bad password.
func authServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Requête invalide", http.StatusBadRequest)
			return
		}

		switch r.URL.Path {
		case "/auth/login":
			if req["motDePasse"] != "correct" {
				http.Error(w, "Email ou mot de passe incorrect", http.StatusUnauthorized)
				return
			}
		case "/auth/register":
			if req["nom"] == "" {
				http.Error(w, "Nom, email et mot de passe sont obligatoires", http.StatusBadRequest)
				return
			}
		default:
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-1", "type": "Bearer",
			"id": 7, "nom": "Ada", "email": req["email"], "role": "USER",
		})
	}))
}

func TestLoginSuccess(t *testing.T) {
	server := authServer(t)
	defer server.Close()

	store := keyring.NewMemory()
	m := NewManager(api.NewClient(server.URL), store, testLogger())

	if m.State() != StateAnonymous {
		t.Fatalf("fresh manager should be anonymous, got %s", m.State())
	}

	if err := m.Login(context.Background(), "ada@example.com", "correct"); err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}

	if m.State() != StateAuthenticated {
		t.Errorf("expected authenticated state, got %s", m.State())
	}
	user := m.User()
	if user == nil || user.Email != "ada@example.com" || user.Name != "Ada" {
		t.Errorf("unexpected user: %+v", user)
	}
	if m.Token() != "tok-1" {
		t.Errorf("expected token tok-1, got %q", m.Token())
	}

	// Token and profile persisted together.
	creds, err := store.Read()
	if err != nil {
		t.Fatalf("store read: %v", err)
	}
	if creds.Token != "tok-1" {
		t.Errorf("token not persisted: %q", creds.Token)
	}
	var stored User
	if err := json.Unmarshal(creds.User, &stored); err != nil {
		t.Fatalf("stored profile not JSON: %v", err)
	}
	if stored.ID != 7 {
		t.Errorf("profile not persisted: %+v", stored)
	}
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	server := authServer(t)
	defer server.Close()

	store := keyring.NewMemory()
	m := NewManager(api.NewClient(server.URL), store, testLogger())

	if err := m.Login(context.Background(), "ada@example.com", "correct"); err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}
	priorToken := m.Token()

	err := m.Login(context.Background(), "ada@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error for wrong password")
	}
	var httpErr *api.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *api.HTTPError, got %T", err)
	}
	if httpErr.Message != "Email ou mot de passe incorrect" {
		t.Errorf("expected server message, got %q", httpErr.Message)
	}

	// The prior session survives the failed attempt.
	if m.State() != StateAuthenticated {
		t.Error("failed login must not clear the session")
	}
	if m.Token() != priorToken {
		t.Errorf("token changed after failed login: %q", m.Token())
	}
}

func TestRegister(t *testing.T) {
	server := authServer(t)
	defer server.Close()

	m := NewManager(api.NewClient(server.URL), keyring.NewMemory(), testLogger())

	if err := m.Register(context.Background(), "Ada", "ada@example.com", "pw"); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if m.State() != StateAuthenticated {
		t.Errorf("expected authenticated state, got %s", m.State())
	}
}

func TestRestoreFromStore(t *testing.T) {
	store := keyring.NewMemory()
	profile, _ := json.Marshal(&User{ID: 3, Name: "Grace", Email: "grace@example.com", Role: "USER"})
	if err := store.Write(&keyring.Credentials{Token: "tok-old", User: profile}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	m := NewManager(api.NewClient("http://unused"), store, testLogger())

	if m.State() != StateAuthenticated {
		t.Fatalf("expected restored session, got %s", m.State())
	}
	if m.Token() != "tok-old" {
		t.Errorf("expected restored token, got %q", m.Token())
	}
	if user := m.User(); user == nil || user.Name != "Grace" {
		t.Errorf("unexpected restored user: %+v", user)
	}
}

func TestRestoreCorruptProfileIsAnonymous(t *testing.T) {
	store := keyring.NewMemory()
	if err := store.Write(&keyring.Credentials{Token: "tok", User: json.RawMessage(`{broken`)}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	m := NewManager(api.NewClient("http://unused"), store, testLogger())
	if m.State() != StateAnonymous {
		t.Errorf("corrupt profile must yield anonymous, got %s", m.State())
	}
}

// failingStore errors on Delete, to prove logout still clears memory.
type failingStore struct {
	keyring.Store
}

func (f *failingStore) Delete() error {
	return errors.New("disk on fire")
}

func TestLogoutClearsEvenWhenStoreFails(t *testing.T) {
	server := authServer(t)
	defer server.Close()

	store := &failingStore{Store: keyring.NewMemory()}
	m := NewManager(api.NewClient(server.URL), store, testLogger())

	if err := m.Login(context.Background(), "ada@example.com", "correct"); err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}

	var gotNilUser bool
	m.OnSessionChange(func(u *User) {
		if u == nil {
			gotNilUser = true
		}
	})

	m.Logout(context.Background())

	if m.State() != StateAnonymous {
		t.Error("logout must clear in-memory session despite store failure")
	}
	if m.User() != nil || m.Token() != "" {
		t.Error("user and token must both clear on logout")
	}
	if !gotNilUser {
		t.Error("subscribers must be notified with nil user on logout")
	}
}

func TestDoRequiresAuth(t *testing.T) {
	m := NewManager(api.NewClient("http://unused"), keyring.NewMemory(), testLogger())

	err := m.Do(context.Background(), http.MethodGet, "/cart", nil, nil)
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestDoAttachesBearer(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"token": "tok-2", "id": 1, "nom": "A", "email": "a@b.c", "role": "USER"})
			return
		}
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	m := NewManager(api.NewClient(server.URL), keyring.NewMemory(), testLogger())
	if err := m.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}

	if err := m.Do(context.Background(), http.MethodGet, "/cart", nil, nil); err != nil {
		t.Fatalf("Do() unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-2" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
}

func TestMissingTokenInAuthResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": 1, "nom": "A", "email": "a@b.c"})
	}))
	defer server.Close()

	m := NewManager(api.NewClient(server.URL), keyring.NewMemory(), testLogger())
	err := m.Login(context.Background(), "a@b.c", "pw")
	if !errors.Is(err, api.ErrMalformedResponse) {
		t.Fatalf("expected malformed response error, got %v", err)
	}
	if m.State() != StateAnonymous {
		t.Error("state must stay anonymous on malformed auth response")
	}
}
