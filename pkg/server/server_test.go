package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"netalloc/pkg/config"
	"netalloc/pkg/logger"
	"netalloc/pkg/metrics"
)

func init() {
	logger.Init("error")
}

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Name: "allocation-svc", Environment: "test"},
		GRPC: config.GRPCConfig{Port: 50051},
	}
}

func TestNewServer(t *testing.T) {
	srv := New(testConfig())
	require.NotNil(t, srv)
	assert.NotNil(t, srv.GetEngine())
	assert.Nil(t, srv.Metrics(), "metrics disabled in config")
}

func TestNewServer_WithMetrics(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry(), "test", "server")
	srv := NewWithOptions(testConfig(), &Options{Metrics: m})

	assert.Same(t, m, srv.Metrics())
}

func TestNewServer_DevelopmentRegistersReflection(t *testing.T) {
	cfg := testConfig()
	cfg.App.Environment = "development"

	srv := New(cfg)
	info := srv.GetEngine().GetServiceInfo()

	_, hasHealth := info["grpc.health.v1.Health"]
	assert.True(t, hasHealth)
	_, hasReflection := info["grpc.reflection.v1.ServerReflection"]
	assert.True(t, hasReflection)
}

func TestServe_HealthCheck(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := New(testConfig())

	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{
		Service: "allocation-svc",
	})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())

	srv.SetServingStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	resp, err = grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{
		Service: "allocation-svc",
	})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	cfg := testConfig()
	cfg.GRPC.Port = 0

	srv := New(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
