package order

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopie/shopie-cli/internal/api"
)

// Requester performs authenticated requests against the backend.
// Satisfied by *session.Manager.
type Requester interface {
	Do(ctx context.Context, method, path string, body, out any, opts ...api.RequestOption) error
}

// Service reads the signed-in user's order history.
type Service struct {
	session Requester
	logger  *slog.Logger
}

// NewService creates an order history service.
func NewService(session Requester, logger *slog.Logger) *Service {
	return &Service{
		session: session,
		logger:  logger,
	}
}

// List returns the user's orders, newest ordering decided by the server.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := s.session.Do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		s.logger.Debug("order list failed", "error", err)
		return nil, err
	}
	return orders, nil
}

// Get returns one order by identifier.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	var o Order
	path := fmt.Sprintf("/orders/%d", id)
	if err := s.session.Do(ctx, http.MethodGet, path, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
