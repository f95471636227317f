package handler

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// GRPCHealth exposes grpc.health.v1.Health for one service and keeps its
// status in line with store reachability.
type GRPCHealth struct {
	service string
	store   Pinger
	server  *health.Server
	logger  *slog.Logger
}

func NewGRPCHealth(service string, store Pinger, logger *slog.Logger) *GRPCHealth {
	return &GRPCHealth{
		service: service,
		store:   store,
		server:  health.NewServer(),
		logger:  logger,
	}
}

// Register attaches the health service, plus reflection for grpcurl, to srv.
func (h *GRPCHealth) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, h.server)
	reflection.Register(srv)
}

// Check pings the store once and publishes the result for both the named
// service and the server-wide "" entry.
func (h *GRPCHealth) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := h.store.Ping(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		h.logger.WarnContext(ctx, "store unreachable, reporting NOT_SERVING", slog.String("error", err.Error()))
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(h.service, status)
	return status
}

// Watch rechecks every interval until ctx is done.
func (h *GRPCHealth) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	h.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			h.Check(checkCtx)
			cancel()
		}
	}
}

// Shutdown marks everything NOT_SERVING so clients drain before GracefulStop.
func (h *GRPCHealth) Shutdown() {
	h.server.Shutdown()
}
