package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pingwatch/connectivity-monitor/internal/config"
	"github.com/pingwatch/connectivity-monitor/internal/metrics"
	"github.com/pingwatch/connectivity-monitor/internal/probe"
	"github.com/pingwatch/connectivity-monitor/internal/service"
	grpcTransport "github.com/pingwatch/connectivity-monitor/internal/transport/grpc"
	httpTransport "github.com/pingwatch/connectivity-monitor/internal/transport/http"
	"github.com/pingwatch/connectivity-monitor/pkg/logger"
)

const serviceName = "monitor-service"

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Service failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	loggerCfg := logger.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.FilePath,
		FileName: cfg.Logging.FileName,
	}

	if err := logger.SetupLogger(loggerCfg, serviceName); err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}

	logger.LogServiceStart(serviceName, map[string]interface{}{
		"http_port":        cfg.Server.HTTPPort,
		"grpc_port":        cfg.Server.GRPCPort,
		"grpc_enabled":     cfg.Server.GRPCEnabled,
		"check_mode":       cfg.Checks.Mode,
		"check_timeout":    cfg.Checks.Timeout.String(),
		"checks_file":      cfg.Checks.File,
		"metrics_exporter": cfg.Metrics.Exporter,
		"log_level":        cfg.Logging.Level,
	})
	defer logger.LogServiceStop(serviceName, "shutdown")

	ctx := context.Background()

	provider, err := metrics.NewProvider(ctx, cfg.Metrics.Exporter, serviceName)
	if err != nil {
		return fmt.Errorf("create metrics provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down metrics provider", slog.String("error", err.Error()))
		}
	}()

	recorder, err := metrics.NewRecorder(provider.Meter())
	if err != nil {
		return fmt.Errorf("create metrics recorder: %w", err)
	}

	registry, cleanup, err := buildRegistry(ctx, cfg, probe.New(cfg.Checks.Timeout))
	if err != nil {
		return err
	}
	defer cleanup()

	slog.Info("Dependency checks registered", slog.Any("dependencies", registry.Names()))

	healthService := service.NewHealthService(registry,
		service.WithCheckTimeout(cfg.Checks.Timeout),
		service.WithRecorder(recorder),
	)

	handlers := httpTransport.NewHTTPHandlers(healthService, provider.Handler())
	httpServer := httpTransport.NewHTTPServer(cfg, handlers)

	var grpcServer *grpcTransport.GRPCServer
	if cfg.Server.GRPCEnabled {
		grpcServer = grpcTransport.NewGRPCServer(cfg, healthService)
	}

	var wg sync.WaitGroup

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := httpServer.StartServer(); err != nil {
			serverErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	if grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := grpcServer.StartServer(); err != nil {
				serverErr <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case sig := <-quit:
		slog.Info("Shutting down servers...", slog.String("signal", sig.String()))
	case runErr = <-serverErr:
		slog.Error("Server failed, shutting down", slog.String("error", runErr.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		slog.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	if grpcServer != nil {
		if err := grpcServer.Stop(shutdownCtx); err != nil {
			slog.Error("Error stopping gRPC server", slog.String("error", err.Error()))
		}
	}

	wg.Wait()
	slog.Info("All servers stopped")

	return runErr
}
