package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCServer manages gRPC server lifecycle for both facewire services.
type GRPCServer struct {
	server   *grpc.Server
	listener net.Listener
	host     string
	port     int
}

// NewGRPCServer creates a server with the facewire codec forced, optional
// interceptors, and a health service. register installs the service
// implementations.
func NewGRPCServer(host string, port int, register func(*grpc.Server), interceptors ...grpc.UnaryServerInterceptor) (*GRPCServer, error) {
	if register == nil {
		return nil, fmt.Errorf("register cannot be nil")
	}

	opts := []grpc.ServerOption{
		grpc.ForceServerCodec(Codec{}),
	}
	if len(interceptors) > 0 {
		opts = append(opts, grpc.ChainUnaryInterceptor(interceptors...))
	}

	server := grpc.NewServer(opts...)
	register(server)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	return &GRPCServer{
		server: server,
		host:   host,
		port:   port,
	}, nil
}

// Start binds the listener and serves until Shutdown.
// Context is provided for API consistency but Serve blocks until Shutdown
// is called.
func (s *GRPCServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	s.listener = listener
	return s.server.Serve(listener)
}

// Shutdown gracefully stops the server with a 30-second timeout.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("shutdown cancelled by context: %w", ctx.Err())
	case <-time.After(30 * time.Second):
		s.server.Stop()
		return fmt.Errorf("graceful shutdown timeout, forced stop")
	}
}
