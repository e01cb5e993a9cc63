// Package server manages the running/stopped state of the proxy backend.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/KooshaPari/vibeproxy/internal/backend"
	"github.com/KooshaPari/vibeproxy/internal/config"
	"github.com/KooshaPari/vibeproxy/internal/logging"
	"github.com/KooshaPari/vibeproxy/internal/models"
)

// HealthChecker is the probe surface the manager needs from a backend client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*backend.Health, error)
	Close() error
}

// ClientFactory builds a health checker from the backend config. A fresh
// client is built per operation because the config may change between calls.
type ClientFactory func(cfg models.BackendConfig) (HealthChecker, error)

func defaultClientFactory(cfg models.BackendConfig) (HealthChecker, error) {
	return backend.New(cfg)
}

// Status is a point-in-time observation of the backend, produced fresh on
// every Status call and never reused.
type Status struct {
	Running   bool
	LatencyMS int64
	Message   string
}

// Manager tracks and controls the backend's running state. The running flag
// is a cached control intent: Start and Stop trust and mutate it, Status
// always re-probes. The flag is the manager's only mutable shared state; it
// is read at operation entry and written at operation exit, never held across
// a probe, so concurrent operations may race benignly to the same end state.
type Manager struct {
	store      *config.Store
	newClient  ClientFactory
	supervisor ProcessSupervisor
	running    atomic.Bool
	log        zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClientFactory overrides how backend clients are constructed.
func WithClientFactory(f ClientFactory) Option {
	return func(m *Manager) { m.newClient = f }
}

// WithSupervisor overrides the process supervisor.
func WithSupervisor(s ProcessSupervisor) Option {
	return func(m *Manager) { m.supervisor = s }
}

// NewManager creates a manager reading backend settings from the given store.
func NewManager(store *config.Store, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		newClient:  defaultClientFactory,
		supervisor: NewNoopSupervisor(),
		log:        logging.Component("server"),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Start brings the manager to the running state. Already running is a
// success, not an error. A healthy backend confirms the transition; an
// unreachable one triggers the supervisor's soft-start path and the
// transition happens anyway. Any other probe failure aborts the call and
// leaves the flag stopped.
func (m *Manager) Start(ctx context.Context) error {
	if m.running.Load() {
		m.log.Warn().Msg("server is already running")
		return nil
	}

	m.log.Info().Msg("starting server")

	cfg, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, err := m.newClient(cfg.Backend)
	if err != nil {
		return err
	}
	defer client.Close()

	health, err := client.HealthCheck(ctx)

	switch {
	case err == nil:
		if health.Healthy {
			m.log.Info().Int64("latency_ms", health.LatencyMS).Msg("backend server is already running")
		}

	case errors.Is(err, backend.ErrUnavailable):
		m.log.Info().Msg("backend server is not available, starting")

		if err := m.supervisor.StartProcess(ctx, cfg); err != nil {
			return fmt.Errorf("failed to start backend process: %w", err)
		}

	default:
		m.log.Error().Err(err).Msg("failed to check server health")
		return err
	}

	m.running.Store(true)
	m.log.Info().Msg("server started successfully")

	return nil
}

// Stop brings the manager to the stopped state. Already stopped is a
// success, not an error.
func (m *Manager) Stop(ctx context.Context) error {
	if !m.running.Load() {
		m.log.Warn().Msg("server is not running")
		return nil
	}

	m.log.Info().Msg("stopping server")

	if err := m.supervisor.StopProcess(ctx); err != nil {
		return fmt.Errorf("failed to stop backend process: %w", err)
	}

	m.running.Store(false)
	m.log.Info().Msg("server stopped successfully")

	return nil
}

// Status probes the backend and reports what it actually observed. The
// cached flag is never consulted: this is a ground-truth observation, so a
// soft-started manager whose backend is still down reports not running. An
// unreachable backend is a result, not an error; anything else propagates.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	cfg, err := m.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	client, err := m.newClient(cfg.Backend)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	health, err := client.HealthCheck(ctx)
	if err != nil {
		if errors.Is(err, backend.ErrUnavailable) {
			return &Status{
				Running:   false,
				LatencyMS: 0,
				Message:   "Server unavailable",
			}, nil
		}

		return nil, err
	}

	return &Status{
		Running:   health.Healthy,
		LatencyMS: health.LatencyMS,
		Message:   health.Message,
	}, nil
}

// IsRunning reads the cached flag without probing.
func (m *Manager) IsRunning() bool {
	return m.running.Load()
}
