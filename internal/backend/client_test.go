package backend

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/KooshaPari/vibeproxy/internal/models"
)

// startHealthServer runs a gRPC health server on an ephemeral port and
// returns a backend config pointing at it.
func startHealthServer(t *testing.T) (models.BackendConfig, *health.Server) {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	healthSrv := health.NewServer()
	grpcSrv := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)

	go func() { _ = grpcSrv.Serve(lis) }()
	t.Cleanup(grpcSrv.Stop)

	cfg := models.NewAppConfig().Backend
	cfg.Host = "127.0.0.1"
	cfg.Port = lis.Addr().(*net.TCPAddr).Port
	cfg.TimeoutSeconds = 2

	return cfg, healthSrv
}

func TestHealthCheckServing(t *testing.T) {
	cfg, _ := startHealthServer(t)

	client, err := New(cfg)
	require.NoError(t, err)
	defer client.Close()

	h, err := client.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, h.Healthy)
	assert.GreaterOrEqual(t, h.LatencyMS, int64(0))
	assert.Equal(t, "Server healthy", h.Message)
}

func TestHealthCheckNotServing(t *testing.T) {
	cfg, healthSrv := startHealthServer(t)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	client, err := New(cfg)
	require.NoError(t, err)
	defer client.Close()

	h, err := client.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.False(t, h.Healthy)
	assert.Equal(t, "NOT_SERVING", h.Message)
}

func TestHealthCheckUnreachableIsUnavailable(t *testing.T) {
	// Grab a free port and release it so nothing is listening there.
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	require.NoError(t, lis.Close())

	cfg := models.NewAppConfig().Backend
	cfg.Host = "127.0.0.1"
	cfg.Port = port
	cfg.TimeoutSeconds = 1

	client, err := New(cfg)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.HealthCheck(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{
			name:        "grpc unavailable",
			err:         status.Error(codes.Unavailable, "connection refused"),
			unavailable: true,
		},
		{
			name:        "grpc deadline exceeded",
			err:         status.Error(codes.DeadlineExceeded, "timed out"),
			unavailable: true,
		},
		{
			name:        "context deadline",
			err:         context.DeadlineExceeded,
			unavailable: true,
		},
		{
			name:        "permission denied",
			err:         status.Error(codes.PermissionDenied, "no"),
			unavailable: false,
		},
		{
			name:        "unimplemented",
			err:         status.Error(codes.Unimplemented, "unknown service"),
			unavailable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classify(tt.err)
			require.Error(t, classified)

			if tt.unavailable {
				assert.ErrorIs(t, classified, ErrUnavailable)
			} else {
				assert.NotErrorIs(t, classified, ErrUnavailable)
			}
		})
	}
}
