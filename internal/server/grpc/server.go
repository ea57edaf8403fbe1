// Package grpc serves the standard gRPC health protocol so supervisors can
// tell when the engine is ready.
package grpc

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ekisa-team/voxbridge/internal/service"
)

// ServiceName is the health service name reported alongside the server-wide
// ("") status.
const ServiceName = "voxbridge.Engine"

// Server is a gRPC server exposing grpc.health.v1.Health.
type Server struct {
	server *grpc.Server
	health *health.Server
}

// NewServer creates a server reporting NOT_SERVING until SetReady(true).
func NewServer() *Server {
	s := &Server{
		server: grpc.NewServer(),
		health: health.NewServer(),
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	s.SetReady(false)
	return s
}

// SetReady updates the reported serving status.
func (s *Server) SetReady(ready bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Observer returns a registry observer that marks the server ready.
func (s *Server) Observer() service.Observer {
	return func(*service.Handle) {
		s.SetReady(true)
	}
}

// Run listens on host:port and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, host string, port int) error {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then stops gracefully. It
// returns once in-flight calls have finished.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serveDone := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
		case <-serveDone:
			return
		}
		s.health.Shutdown()
		s.server.GracefulStop()
	}()

	slog.Info("gRPC server listening", "address", ln.Addr().String())
	err := s.server.Serve(ln)
	close(serveDone)
	<-stopped
	return err
}
