package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/shopie/shopie-cli/internal/api"
)

// Requester performs authenticated requests against the backend.
// Satisfied by *session.Manager.
type Requester interface {
	Do(ctx context.Context, method, path string, body, out any, opts ...api.RequestOption) error
}

// Service lists and searches products through the session gate.
// Responses are cached for a short TTL to absorb refetch storms from
// interactive callers; a TTL of zero disables the cache.
type Service struct {
	session Requester
	logger  *slog.Logger
	ttl     time.Duration

	cache sync.Map // uint64 -> *cacheEntry
}

// cacheEntry is a cached product listing with expiry.
type cacheEntry struct {
	products  []Product
	expiresAt time.Time
}

// NewService creates a catalog service. cacheTTL of zero disables caching.
func NewService(session Requester, cacheTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		session: session,
		logger:  logger,
		ttl:     cacheTTL,
	}
}

// List returns all products. On failure it returns no products: callers
// reset their view rather than keep possibly-stale data.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.fetch(ctx, "/products", "")
}

// Search returns products whose name matches the query.
func (s *Service) Search(ctx context.Context, name string) ([]Product, error) {
	return s.fetch(ctx, "/products/search", name)
}

func (s *Service) fetch(ctx context.Context, path, name string) ([]Product, error) {
	key := cacheKey(path, name)
	if products, ok := s.fromCache(key); ok {
		return products, nil
	}

	var opts []api.RequestOption
	if name != "" {
		opts = append(opts, api.WithQuery("nom", name))
	}

	var products []Product
	if err := s.session.Do(ctx, http.MethodGet, path, nil, &products, opts...); err != nil {
		s.logger.Debug("product fetch failed", "path", path, "error", err)
		return nil, err
	}

	s.putInCache(key, products)
	return products, nil
}

// cacheKey hashes the request shape into a compact map key.
func cacheKey(path, name string) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(path)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(name)
	return h.Sum64()
}

func (s *Service) fromCache(key uint64) ([]Product, bool) {
	if s.ttl <= 0 {
		return nil, false
	}
	val, ok := s.cache.Load(key)
	if !ok {
		return nil, false
	}
	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		s.cache.Delete(key)
		return nil, false
	}
	return entry.products, true
}

func (s *Service) putInCache(key uint64, products []Product) {
	if s.ttl <= 0 {
		return
	}
	s.cache.Store(key, &cacheEntry{
		products:  products,
		expiresAt: time.Now().Add(s.ttl),
	})
}

// Invalidate drops all cached listings.
func (s *Service) Invalidate() {
	s.cache.Range(func(k, _ any) bool {
		s.cache.Delete(k)
		return true
	})
}
