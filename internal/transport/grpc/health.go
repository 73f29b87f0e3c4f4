// Package grpc exposes the book service health over the standard gRPC health protocol.
package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name under which the book service reports its health.
const ServiceName = "library.v1.BookService"

// Pinger checks that a backing resource is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer reports SERVING for ServiceName while the pinger succeeds.
type HealthServer struct {
	server   *health.Server
	pinger   Pinger
	interval time.Duration
	logger   *slog.Logger
}

// NewHealthServer creates a health server that starts in NOT_SERVING until the first check.
func NewHealthServer(pinger Pinger, interval time.Duration, logger *slog.Logger) *HealthServer {
	srv := health.NewServer()
	srv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{
		server:   srv,
		pinger:   pinger,
		interval: interval,
		logger:   logger.With("component", "grpc_health"),
	}
}

// Register adds the health service to a gRPC server.
func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Check pings once and updates the reported status.
func (h *HealthServer) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, h.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "Health check failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus(ServiceName, status)
}

// Run checks immediately and then every interval until ctx is done.
// On return every service is reported NOT_SERVING.
func (h *HealthServer) Run(ctx context.Context) {
	defer h.server.Shutdown()

	h.Check(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
