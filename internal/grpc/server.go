package grpc

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/weiawesome/wes-io-live/idgen/pkg/idgen"
	pkglog "github.com/weiawesome/wes-io-live/idgen/pkg/log"
)

// ServiceName is the health-checked service.
const ServiceName = "idgen"

// HealthReporter drives the health status from generator results: a clock
// rollback marks the service NOT_SERVING until the next successful call.
type HealthReporter struct {
	health   *health.Server
	degraded atomic.Bool
	logger   zerolog.Logger
}

// NewHealthReporter marks the service SERVING and returns the reporter.
func NewHealthReporter(h *health.Server, logger zerolog.Logger) *HealthReporter {
	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return &HealthReporter{health: h, logger: logger}
}

// Observe implements generator.Observer.
func (r *HealthReporter) Observe(idType string, _ int, _ time.Duration, err error) {
	switch {
	case errors.Is(err, idgen.ErrClockRollback):
		if r.degraded.CompareAndSwap(false, true) {
			r.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
			r.logger.Warn().Err(err).Str(pkglog.FieldIDType, idType).Msg("clock rollback, reporting not serving")
		}
	case err == nil:
		if r.degraded.CompareAndSwap(true, false) {
			r.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
			r.logger.Info().Str(pkglog.FieldIDType, idType).Msg("generation recovered, reporting serving")
		}
	}
}

// Degraded reports whether the last clock-sensitive result was a rollback.
func (r *HealthReporter) Degraded() bool { return r.degraded.Load() }

// Shutdown marks every service NOT_SERVING ahead of a graceful stop.
func (r *HealthReporter) Shutdown() { r.health.Shutdown() }

// NewServer creates a gRPC server exposing the health service and
// reflection, with request logging on every call. There is no id RPC
// service; ids are served over HTTP by internal/handler.
func NewServer(h *health.Server, logger zerolog.Logger) *grpc.Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(pkglog.UnaryServerInterceptor(logger)),
		grpc.ChainStreamInterceptor(pkglog.StreamServerInterceptor(logger)),
	)
	healthpb.RegisterHealthServer(s, h)
	reflection.Register(s)
	return s
}
