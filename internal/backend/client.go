// Package backend implements the health-check client for the proxy backend.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/KooshaPari/vibeproxy/internal/models"
)

// ErrUnavailable indicates the backend could not be reached at all, as
// opposed to reaching it and getting an error back. Probe timeouts are folded
// into this classification.
var ErrUnavailable = errors.New("backend unavailable")

const defaultTimeout = 5 * time.Second

// Health is the result of a successful probe exchange.
type Health struct {
	Healthy   bool
	LatencyMS int64
	Message   string
}

// Client probes a backend over the gRPC health-checking protocol.
type Client struct {
	cfg     models.BackendConfig
	timeout time.Duration
	conn    *grpc.ClientConn
}

// New creates a client for the configured backend. Extra dial options are
// appended after the defaults, so tests can substitute the transport.
func New(cfg models.BackendConfig, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(cfg.Address(), dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client for %s: %w", cfg.Address(), err)
	}

	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return &Client{cfg: cfg, timeout: timeout, conn: conn}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// HealthCheck issues a single bounded health probe. An unreachable backend or
// an expired deadline returns an error wrapping ErrUnavailable; every other
// RPC failure is returned as-is for the caller to treat as fatal.
func (c *Client) HealthCheck(ctx context.Context) (*Health, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()

	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{
		Service: c.cfg.Service,
	})
	if err != nil {
		return nil, classify(err)
	}

	latency := time.Since(start).Milliseconds()

	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return &Health{
			Healthy:   false,
			LatencyMS: latency,
			Message:   resp.GetStatus().String(),
		}, nil
	}

	return &Health{
		Healthy:   true,
		LatencyMS: latency,
		Message:   "Server healthy",
	}, nil
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return fmt.Errorf("health check failed: %w", err)
	}
}
