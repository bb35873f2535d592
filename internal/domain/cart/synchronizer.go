package cart

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/shopie/shopie-cli/internal/api"
	"github.com/shopie/shopie-cli/internal/metrics"
)

// Requester performs authenticated requests against the backend.
// Satisfied by *session.Manager.
type Requester interface {
	Do(ctx context.Context, method, path string, body, out any, opts ...api.RequestOption) error
}

// Synchronizer mirrors the server-side cart. Every mutation is
// write-then-reload: it sends the change to the backend, then refetches the
// entire cart before returning. There is no optimistic local update.
//
// The mutex protects the mirror slice only. Operations themselves are not
// serialized against each other: two concurrent mutations may interleave
// their reloads, and the last reload to land wins. That transient staleness
// is a documented property of the write-then-reload model, not corrected here.
type Synchronizer struct {
	session Requester
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	items   []Item
	loading bool
}

// NewSynchronizer creates a cart synchronizer with an empty mirror.
// Call Load to populate it.
func NewSynchronizer(session Requester, logger *slog.Logger, m *metrics.Metrics) *Synchronizer {
	return &Synchronizer{
		session: session,
		logger:  logger,
		metrics: m,
	}
}

// Load refetches the whole cart from the backend. On failure the mirror is
// cleared: an empty cart is safer to show than a stale one.
func (s *Synchronizer) Load(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	var items []Item
	if err := s.session.Do(ctx, http.MethodGet, "/cart", nil, &items); err != nil {
		s.logger.Debug("cart load failed, clearing mirror", "error", err)
		s.replace(nil)
		return err
	}

	s.replace(items)
	return nil
}

// Add puts quantity units of a product in the cart, then reloads.
func (s *Synchronizer) Add(ctx context.Context, productID int64, quantity int) error {
	err := s.session.Do(ctx, http.MethodPost, "/cart", addRequest{
		ProductID: productID,
		Quantity:  quantity,
	}, nil)
	s.metrics.RecordCartMutation("add", err)
	if err != nil {
		return err
	}
	return s.Load(ctx)
}

// Update changes the quantity of a cart line, then reloads.
//
// Non-positive quantities are forwarded to the backend as-is: converting a
// reduction to zero into a removal is the caller's decision, and silently
// clamping here would hide that decision from them.
func (s *Synchronizer) Update(ctx context.Context, itemID int64, quantity int) error {
	path := fmt.Sprintf("/cart/%d", itemID)
	err := s.session.Do(ctx, http.MethodPut, path, nil, nil,
		api.WithQuery("quantite", strconv.Itoa(quantity)))
	s.metrics.RecordCartMutation("update", err)
	if err != nil {
		return err
	}
	return s.Load(ctx)
}

// Remove deletes one cart line, then reloads.
func (s *Synchronizer) Remove(ctx context.Context, itemID int64) error {
	path := fmt.Sprintf("/cart/%d", itemID)
	err := s.session.Do(ctx, http.MethodDelete, path, nil, nil)
	s.metrics.RecordCartMutation("remove", err)
	if err != nil {
		return err
	}
	return s.Load(ctx)
}

// Clear empties the whole cart. On success the mirror is set to empty
// directly; this is the only mutation that skips the reload, since the
// resulting state is already known.
func (s *Synchronizer) Clear(ctx context.Context) error {
	err := s.session.Do(ctx, http.MethodDelete, "/cart", nil, nil)
	s.metrics.RecordCartMutation("clear", err)
	if err != nil {
		return err
	}
	s.replace(nil)
	return nil
}

// Reset clears the mirror locally without any network call. Wired to
// session changes: a signed-out user has no cart to fetch.
func (s *Synchronizer) Reset() {
	s.replace(nil)
}

// Items returns a copy of the current mirror.
func (s *Synchronizer) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// Total returns the sum of unit price times quantity over the mirror.
func (s *Synchronizer) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Total(s.items)
}

// ItemCount returns the sum of quantities over the mirror.
func (s *Synchronizer) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Count(s.items)
}

// Loading reports whether a Load is in flight, for UI suspense states.
func (s *Synchronizer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Synchronizer) replace(items []Item) {
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func (s *Synchronizer) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
