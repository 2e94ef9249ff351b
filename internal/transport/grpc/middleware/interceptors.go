package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	svcerrors "github.com/pingwatch/connectivity-monitor/internal/errors"
	"github.com/pingwatch/connectivity-monitor/pkg/logger"
)

const RequestIDMetadataKey = "x-request-id"

func LoggingUnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	logger.LogGRPCRequest(ctx, info.FullMethod, time.Since(start), err)
	return resp, err
}

// RequestIDUnaryInterceptor reuses the caller's x-request-id metadata when
// present, otherwise mints one, and echoes it in the response header.
func RequestIDUnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	requestID := incomingRequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx = logger.ContextWithRequestID(ctx, requestID)

	if err := grpc.SetHeader(ctx, metadata.Pairs(RequestIDMetadataKey, requestID)); err != nil {
		slog.Debug("Failed to set request id header", slog.String("error", err.Error()))
	}

	return handler(ctx, req)
}

func PanicRecoveryUnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithRequestID(logger.RequestIDFromContext(ctx)).ErrorContext(ctx, "Panic recovered in gRPC handler",
				slog.String("method", info.FullMethod),
				slog.Any("panic", r))
			err = svcerrors.ErrInternalError.ToGRPCStatus()
		}
	}()
	return handler(ctx, req)
}

func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(RequestIDMetadataKey); len(values) > 0 {
		return values[0]
	}
	return ""
}
