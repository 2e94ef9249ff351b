package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pingwatch/connectivity-monitor/internal/service"
)

type HTTPHandlers struct {
	service service.HealthService
	metrics http.Handler
	now     func() time.Time
}

// NewHTTPHandlers wires the health routes. metricsHandler may be nil, in
// which case /metrics is not served.
func NewHTTPHandlers(healthService service.HealthService, metricsHandler http.Handler) *HTTPHandlers {
	return &HTTPHandlers{
		service: healthService,
		metrics: metricsHandler,
		now:     time.Now,
	}
}

func (h *HTTPHandlers) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/", h.HandleHealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/health", h.HandleHealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ping", h.HandlePing).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.HandleReady).Methods(http.MethodGet)
	router.HandleFunc("/live", h.HandleLive).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", h.HandleHealthCheck).Methods(http.MethodGet)
	api.HandleFunc("/health/", h.HandleHealthCheck).Methods(http.MethodGet)
	api.HandleFunc("/health/ping", h.HandlePing).Methods(http.MethodGet)
	api.HandleFunc("/health/ready", h.HandleReady).Methods(http.MethodGet)
	api.HandleFunc("/health/live", h.HandleLive).Methods(http.MethodGet)

	api.HandleFunc("/watcher/ping", h.HandlePing).Methods(http.MethodGet)
	api.HandleFunc("/watcher/health", h.HandleWatcherHealth).Methods(http.MethodGet)

	if h.metrics != nil {
		router.Handle("/metrics", h.metrics).Methods(http.MethodGet)
	}
}
