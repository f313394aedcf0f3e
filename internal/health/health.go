// Package health exposes grpc.health.v1.Health driven by store readiness.
package health

import (
	"context"
	"net"
	"time"

	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the service reported next to the overall ("") status.
const ServiceName = "ledger"

const pingTimeout = 2 * time.Second

// Pinger reports whether the ledger store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server serves gRPC health checks and keeps them in sync with the store.
type Server struct {
	address  string
	pinger   Pinger
	interval time.Duration
	health   *health.Server
}

// NewServer creates a Server. All services start as NOT_SERVING until the first probe.
func NewServer(address string, pinger Pinger, interval time.Duration) *Server {
	h := health.NewServer()
	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Server{
		address:  address,
		pinger:   pinger,
		interval: interval,
		health:   h,
	}
}

// Probe pings the store once and updates the serving status.
func (s *Server) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.PingContext(ctx); err != nil {
		logger.Log.Warnw("ledger store is not reachable", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

func (s *Server) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves health checks on lis until ctx is done.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.health)

	go s.watch(ctx)
	go func() {
		<-ctx.Done()
		logger.Log.Infow("Stopping gRPC health server")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	logger.Log.Infow("Starting gRPC health server", "address", lis.Addr().String())
	return srv.Serve(lis)
}
