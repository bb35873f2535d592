package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/shopie/shopie-cli/internal/api"
	"github.com/shopie/shopie-cli/internal/domain/catalog"
	"github.com/shopie/shopie-cli/internal/domain/session"
	"github.com/shopie/shopie-cli/internal/keyring"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// cartFixture is a minimal backend cart implementation for tests.
type cartFixture struct {
	mu          sync.Mutex
	items       []Item
	nextID      int64
	products    map[int64]*catalog.Product
	loadCount   int
	lastUpdateQ string
	failLoad    bool
}

func newCartFixture() *cartFixture {
	return &cartFixture{
		nextID: 1000,
		products: map[int64]*catalog.Product{
			1: {ID: 1, Name: "Casque", Price: 10},
			2: {ID: 2, Name: "Clavier", Price: 5},
			3: {ID: 3, Name: "Souris", Price: 19.99},
		},
	}
}

func (f *cartFixture) handler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"token": "tok", "id": 1, "nom": "A", "email": "a@b.c", "role": "USER"})
			return
		}

		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "Authentification requise", http.StatusUnauthorized)
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case r.URL.Path == "/cart" && r.Method == http.MethodGet:
			f.loadCount++
			if f.failLoad {
				http.Error(w, "Erreur interne", http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(f.items)

		case r.URL.Path == "/cart" && r.Method == http.MethodPost:
			var req struct {
				ProductID int64 `json:"productId"`
				Quantity  int   `json:"quantite"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			product, ok := f.products[req.ProductID]
			if !ok {
				http.Error(w, "Produit non trouvé", http.StatusNotFound)
				return
			}
			for i := range f.items {
				if f.items[i].Product.ID == req.ProductID {
					f.items[i].Quantity += req.Quantity
					json.NewEncoder(w).Encode(f.items[i])
					return
				}
			}
			f.nextID++
			item := Item{ID: f.nextID, Product: product, Quantity: req.Quantity}
			f.items = append(f.items, item)
			json.NewEncoder(w).Encode(item)

		case r.URL.Path == "/cart" && r.Method == http.MethodDelete:
			f.items = nil
			w.WriteHeader(http.StatusNoContent)

		case strings.HasPrefix(r.URL.Path, "/cart/") && r.Method == http.MethodPut:
			f.lastUpdateQ = r.URL.Query().Get("quantite")
			q, err := strconv.Atoi(f.lastUpdateQ)
			if err != nil || q < 1 {
				http.Error(w, "La quantité doit être au moins 1", http.StatusBadRequest)
				return
			}
			id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/cart/"), 10, 64)
			for i := range f.items {
				if f.items[i].ID == id {
					f.items[i].Quantity = q
					json.NewEncoder(w).Encode(f.items[i])
					return
				}
			}
			http.Error(w, "Article non trouvé", http.StatusNotFound)

		case strings.HasPrefix(r.URL.Path, "/cart/") && r.Method == http.MethodDelete:
			id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/cart/"), 10, 64)
			for i := range f.items {
				if f.items[i].ID == id {
					f.items = append(f.items[:i], f.items[i+1:]...)
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			http.Error(w, "Article non trouvé", http.StatusNotFound)

		default:
			http.NotFound(w, r)
		}
	})
}

// testSync builds a Synchronizer wired through a real session manager
// against the fixture backend.
func testSync(t *testing.T, f *cartFixture) *Synchronizer {
	t.Helper()
	server := httptest.NewServer(f.handler(t))
	t.Cleanup(server.Close)

	m := session.NewManager(api.NewClient(server.URL), keyring.NewMemory(), testLogger())
	if err := m.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return NewSynchronizer(m, testLogger(), nil)
}

func TestAddThenReload(t *testing.T) {
	f := newCartFixture()
	syncer := testSync(t, f)

	if err := syncer.Add(context.Background(), 1, 2); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	// The mirror reflects the reloaded server state, not a local patch.
	items := syncer.Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("unexpected mirror after add: %+v", items)
	}

	// Adding the same product again increases its quantity by that amount.
	if err := syncer.Add(context.Background(), 1, 3); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	items = syncer.Items()
	if len(items) != 1 || items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %+v", items)
	}
}

func TestAddUnknownProduct(t *testing.T) {
	f := newCartFixture()
	syncer := testSync(t, f)

	err := syncer.Add(context.Background(), 999, 1)
	if err == nil {
		t.Fatal("expected error for unknown product")
	}
	if syncer.ItemCount() != 0 {
		t.Error("mirror must stay empty after failed add")
	}
}

func TestUpdateDoesNotClampNegative(t *testing.T) {
	f := newCartFixture()
	syncer := testSync(t, f)

	if err := syncer.Add(context.Background(), 1, 2); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	itemID := syncer.Items()[0].ID

	// The synchronizer forwards non-positive quantities untouched; the
	// backend rejects them. Removal-on-zero is the caller's policy.
	err := syncer.Update(context.Background(), itemID, -1)
	if err == nil {
		t.Fatal("expected backend rejection of negative quantity")
	}
	if f.lastUpdateQ != "-1" {
		t.Errorf("expected raw quantity -1 forwarded, server saw %q", f.lastUpdateQ)
	}
}

func TestUpdateThenReload(t *testing.T) {
	f := newCartFixture()
	syncer := testSync(t, f)

	if err := syncer.Add(context.Background(), 1, 2); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	itemID := syncer.Items()[0].ID

	if err := syncer.Update(context.Background(), itemID, 7); err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if got := syncer.Items()[0].Quantity; got != 7 {
		t.Errorf("expected quantity 7 after update, got %d", got)
	}
}

func TestRemoveThenReload(t *testing.T) {
	f := newCartFixture()
	syncer := testSync(t, f)

	if err := syncer.Add(context.Background(), 1, 1); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	if err := syncer.Add(context.Background(), 2, 1); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	itemID := syncer.Items()[0].ID

	if err := syncer.Remove(context.Background(), itemID); err != nil {
		t.Fatalf("Remove() unexpected error: %v", err)
	}
	if got := len(syncer.Items()); got != 1 {
		t.Errorf("expected 1 item after remove, got %d", got)
	}
}

func TestClearSkipsReload(t *testing.T) {
	f := newCartFixture()
	syncer := testSync(t, f)

	if err := syncer.Add(context.Background(), 1, 1); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	f.mu.Lock()
	loadsBefore := f.loadCount
	f.mu.Unlock()

	if err := syncer.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() unexpected error: %v", err)
	}

	// Clear is the one mutation that updates the mirror without refetching.
	f.mu.Lock()
	loadsAfter := f.loadCount
	f.mu.Unlock()
	if loadsAfter != loadsBefore {
		t.Errorf("Clear must not trigger a reload: loads %d -> %d", loadsBefore, loadsAfter)
	}
	if syncer.ItemCount() != 0 {
		t.Error("mirror must be empty after clear")
	}
}

func TestLoadFailureClearsMirror(t *testing.T) {
	f := newCartFixture()
	syncer := testSync(t, f)

	if err := syncer.Add(context.Background(), 1, 1); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	f.mu.Lock()
	f.failLoad = true
	f.mu.Unlock()

	if err := syncer.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	// Empty beats stale.
	if syncer.ItemCount() != 0 {
		t.Error("mirror must clear on load failure")
	}
}

func TestReset(t *testing.T) {
	f := newCartFixture()
	syncer := testSync(t, f)

	if err := syncer.Add(context.Background(), 1, 1); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	f.mu.Lock()
	loadsBefore := f.loadCount
	f.mu.Unlock()

	syncer.Reset()

	if syncer.ItemCount() != 0 {
		t.Error("Reset must clear the mirror")
	}
	f.mu.Lock()
	loadsAfter := f.loadCount
	f.mu.Unlock()
	if loadsAfter != loadsBefore {
		t.Error("Reset must not touch the network")
	}
}

func TestTotals(t *testing.T) {
	items := []Item{
		{ID: 1, Product: &catalog.Product{ID: 1, Price: 10}, Quantity: 2},
		{ID: 2, Product: &catalog.Product{ID: 2, Price: 5}, Quantity: 3},
	}

	if got := Total(items); got != 35 {
		t.Errorf("Total() = %v, want 35", got)
	}
	if got := Count(items); got != 5 {
		t.Errorf("Count() = %v, want 5", got)
	}
	if got := Total(nil); got != 0 {
		t.Errorf("Total(empty) = %v, want 0", got)
	}
	if got := Count(nil); got != 0 {
		t.Errorf("Count(empty) = %v, want 0", got)
	}

	// A missing product counts as price 0.
	withMissing := append(items, Item{ID: 3, Product: nil, Quantity: 4})
	if got := Total(withMissing); got != 35 {
		t.Errorf("Total() with missing product = %v, want 35", got)
	}
	if got := Count(withMissing); got != 9 {
		t.Errorf("Count() with missing product = %v, want 9", got)
	}
}
