package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pingwatch/connectivity-monitor/internal/config"
	"github.com/pingwatch/connectivity-monitor/internal/transport/http/middleware"
)

type HTTPServer struct {
	server   *http.Server
	handlers *HTTPHandlers
}

func NewHTTPServer(cfg *config.Config, handlers *HTTPHandlers) *HTTPServer {
	return &HTTPServer{
		handlers: handlers,
		server: &http.Server{
			Addr:         ":" + cfg.Server.HTTPPort,
			Handler:      NewRouter(handlers),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

// NewRouter builds the full handler chain. The middleware wraps the router
// rather than being registered with Use, so unmatched routes and preflight
// requests are logged and tagged too. Logging sits outermost so the request
// id is set before recovery reads it and panics still get an access log.
func NewRouter(handlers *HTTPHandlers) http.Handler {
	router := mux.NewRouter()
	handlers.SetupRoutes(router)

	var handler http.Handler = router
	handler = middleware.CORSMiddleware(handler)
	handler = middleware.PanicRecoveryMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)

	return handler
}

func (s *HTTPServer) StartServer() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		slog.Error("Failed to listen on HTTP port",
			slog.String("address", s.server.Addr),
			slog.String("error", err.Error()),
		)
		return err
	}

	return s.Serve(listener)
}

func (s *HTTPServer) Serve(listener net.Listener) error {
	slog.Info("Starting HTTP server",
		slog.String("address", listener.Addr().String()),
	)

	if err := s.server.Serve(listener); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("HTTP server stopped")
			return nil
		}
		slog.Error("HTTP server error", slog.String("error", err.Error()))
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	slog.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}
