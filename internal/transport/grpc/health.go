package grpc

import (
	"context"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	svcerrors "github.com/pingwatch/connectivity-monitor/internal/errors"
	"github.com/pingwatch/connectivity-monitor/internal/service"
)

// HealthServer exposes the aggregator through grpc.health.v1.Health. The
// empty service name stands for the monitor as a whole; any other name is a
// registered dependency.
type HealthServer struct {
	healthpb.UnimplementedHealthServer
	service service.HealthService
}

func NewHealthServer(healthService service.HealthService) *HealthServer {
	return &HealthServer{service: healthService}
}

func (s *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	name := req.GetService()

	if name == "" {
		report := s.service.Health(ctx)
		return servingResponse(report.Healthy()), nil
	}

	outcome, err := s.service.Check(ctx, name)
	if err != nil {
		return nil, svcerrors.ToServiceError(err).ToGRPCStatus()
	}

	return servingResponse(outcome.Healthy), nil
}

func servingResponse(healthy bool) *healthpb.HealthCheckResponse {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if healthy {
		status = healthpb.HealthCheckResponse_SERVING
	}
	return &healthpb.HealthCheckResponse{Status: status}
}
