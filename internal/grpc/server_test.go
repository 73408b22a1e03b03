package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/weiawesome/wes-io-live/idgen/pkg/idgen"
	pkglog "github.com/weiawesome/wes-io-live/idgen/pkg/log"
)

func status(t *testing.T, h healthpb.HealthServer) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealthReporter(t *testing.T) {
	h := health.NewServer()
	r := NewHealthReporter(h, pkglog.Nop())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, h))

	r.Observe("snowflake", 1, time.Millisecond, errors.New("unrelated"))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, h))

	r.Observe("snowflake", 1, time.Millisecond, &idgen.ClockRollbackError{Last: 10, Now: 1})
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, h))
	assert.True(t, r.Degraded())

	r.Observe("snowflake", 1, time.Millisecond, nil)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, h))
	assert.False(t, r.Degraded())
}

func TestServerServesHealth(t *testing.T) {
	h := health.NewServer()
	r := NewHealthReporter(h, pkglog.Nop())
	s := NewServer(h, pkglog.Nop())

	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	client := healthpb.NewHealthClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	r.Observe("text-millis", 1, 0, &idgen.ClockRollbackError{Last: 2, Now: 1})
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	r.Shutdown()
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: ""})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}
