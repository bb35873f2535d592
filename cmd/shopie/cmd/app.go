package cmd

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shopie/shopie-cli/internal/api"
	"github.com/shopie/shopie-cli/internal/config"
	"github.com/shopie/shopie-cli/internal/domain/cart"
	"github.com/shopie/shopie-cli/internal/domain/catalog"
	"github.com/shopie/shopie-cli/internal/domain/checkout"
	"github.com/shopie/shopie-cli/internal/domain/order"
	"github.com/shopie/shopie-cli/internal/domain/session"
	"github.com/shopie/shopie-cli/internal/keyring"
	"github.com/shopie/shopie-cli/internal/metrics"
)

// app is the composition root: every service is constructed here and passed
// down explicitly. No ambient globals, so each service stays independently
// testable.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   keyring.Store
	session *session.Manager
	cart    *cart.Synchronizer
	catalog *catalog.Service
	orders  *order.Service
	check   *checkout.Orchestrator

	closers []func() error
}

// buildApp loads config and wires the full service graph.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	a := &app{cfg: cfg, logger: logger}

	if err := a.buildStore(); err != nil {
		return nil, err
	}

	m := metrics.New(prometheus.NewRegistry())

	clientOpts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
		api.WithMetrics(m),
	}
	if cfg.API.Telemetry {
		clientOpts = append(clientOpts, api.WithInstrumentedTransport())
	}
	client := api.NewClient(cfg.API.BaseURL, clientOpts...)

	a.session = session.NewManager(client, a.store, logger)
	a.cart = cart.NewSynchronizer(a.session, logger, m)
	a.catalog = catalog.NewService(a.session, cfg.Cache.ProductsTTL, logger)
	a.orders = order.NewService(a.session, logger)
	a.check = checkout.NewOrchestrator(a.session, a.cart, logger, m)

	// A vanished user means an empty cart: clear the mirror without any
	// network call.
	a.session.OnSessionChange(func(u *session.User) {
		if u == nil {
			a.cart.Reset()
		}
	})

	return a, nil
}

// buildStore selects the keyring backend from config.
func (a *app) buildStore() error {
	if noPersist {
		a.store = keyring.NewMemory()
		return nil
	}

	switch a.cfg.Session.Store {
	case "sqlite":
		store, err := keyring.NewSQLiteStore(a.cfg.Session.Path)
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		a.store = store
		a.closers = append(a.closers, store.Close)
	case "memory":
		a.store = keyring.NewMemory()
	default:
		a.store = keyring.NewFileStore(a.cfg.Session.Path, a.logger)
	}
	return nil
}

// Close releases resources held by the app.
func (a *app) Close() {
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

// requireSession returns an error early when no user is signed in, so
// commands fail with a clear message instead of a backend 401.
func (a *app) requireSession() error {
	if a.session.State() != session.StateAuthenticated {
		return fmt.Errorf("not signed in, run 'shopie login' first")
	}
	return nil
}
