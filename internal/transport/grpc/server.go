package grpc

import (
	"context"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/pingwatch/connectivity-monitor/internal/config"
	"github.com/pingwatch/connectivity-monitor/internal/service"
	"github.com/pingwatch/connectivity-monitor/internal/transport/grpc/middleware"
)

type GRPCServer struct {
	server *grpc.Server
	config *config.Config
}

func NewGRPCServer(cfg *config.Config, healthService service.HealthService) *GRPCServer {
	server := grpc.NewServer(
		// Request id first so recovery and logging both see it.
		grpc.ChainUnaryInterceptor(
			middleware.RequestIDUnaryInterceptor,
			middleware.LoggingUnaryInterceptor,
			middleware.PanicRecoveryUnaryInterceptor,
		),
	)

	healthpb.RegisterHealthServer(server, NewHealthServer(healthService))

	return &GRPCServer{
		server: server,
		config: cfg,
	}
}

func (s *GRPCServer) StartServer() error {
	address := ":" + s.config.Server.GRPCPort

	listener, err := net.Listen("tcp", address)
	if err != nil {
		slog.Error("Failed to listen on gRPC port",
			slog.String("address", address),
			slog.String("error", err.Error()))
		return err
	}

	return s.Serve(listener)
}

func (s *GRPCServer) Serve(listener net.Listener) error {
	slog.Info("gRPC server starting", slog.String("address", listener.Addr().String()))

	if err := s.server.Serve(listener); err != nil {
		slog.Error("gRPC server error", slog.String("error", err.Error()))
		return err
	}

	return nil
}

func (s *GRPCServer) Stop(ctx context.Context) error {
	slog.Info("Stopping gRPC server")

	done := make(chan struct{})

	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("gRPC server stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.Warn("gRPC server shutdown timeout, forcing stop")
		s.server.Stop()
		return ctx.Err()
	}
}
