package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pingwatch/connectivity-monitor/internal/checks"
	"github.com/pingwatch/connectivity-monitor/internal/config"
	"github.com/pingwatch/connectivity-monitor/internal/model"
	"github.com/pingwatch/connectivity-monitor/internal/service"
	transporthttp "github.com/pingwatch/connectivity-monitor/internal/transport/http"
	"github.com/pingwatch/connectivity-monitor/pkg/dto"
)

type panickingService struct{}

func (panickingService) Health(context.Context) *model.HealthReport {
	panic("registry unavailable")
}

func (panickingService) Check(context.Context, string) (model.CheckOutcome, error) {
	panic("registry unavailable")
}

func (panickingService) Dependencies() []string { return nil }

func get(handler http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

var _ = Describe("HTTP handlers", func() {
	var (
		registry *checks.Registry
		router   http.Handler
	)

	BeforeEach(func() {
		registry = checks.NewRegistry()
		registry.Register("Database", checks.Simulated(0, true))
		registry.Register("Redis", checks.CheckFunc(func(context.Context) (bool, error) {
			return false, errors.New("refused")
		}))
		registry.Register("Ping Service", checks.Simulated(0, true))

		metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "# metrics\n")
		})

		handlers := transporthttp.NewHTTPHandlers(service.NewHealthService(registry), metricsHandler)
		router = transporthttp.NewRouter(handlers)
	})

	DescribeTable("serves the health report with 200",
		func(path string) {
			rec := get(router, path)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
			Expect(rec.Body.String()).To(MatchJSON(`{
				"Database": ["Healthy", true],
				"Redis": ["refused", false],
				"Ping Service": ["Healthy", true]
			}`))
		},
		Entry("root", "/"),
		Entry("health", "/health"),
		Entry("api", "/api/v1/health"),
		Entry("api with trailing slash", "/api/v1/health/"),
	)

	It("keeps registration order in the body", func() {
		body := get(router, "/health").Body.String()

		Expect(body).To(HavePrefix(`{"Database":`))
		Expect(body).To(ContainSubstring(`"Redis":["refused",false],"Ping Service"`))
	})

	DescribeTable("answers pings",
		func(path string) {
			rec := get(router, path)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var ping dto.PingResponse
			Expect(dto.DecodeBytes(rec.Body.Bytes(), &ping)).To(Succeed())
			Expect(ping.Status).To(Equal(200))
			Expect(ping.Message).To(Equal("pong"))
			Expect(ping.ServerTime).To(BeNumerically(">", 0))
		},
		Entry("ping", "/ping"),
		Entry("health ping", "/api/v1/health/ping"),
		Entry("watcher ping", "/api/v1/watcher/ping"),
	)

	DescribeTable("answers probe statuses",
		func(path, status string) {
			rec := get(router, path)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var probe dto.ProbeStatus
			Expect(dto.DecodeBytes(rec.Body.Bytes(), &probe)).To(Succeed())
			Expect(probe.Status).To(Equal(status))
			Expect(probe.Timestamp.IsZero()).To(BeFalse())
		},
		Entry("ready", "/ready", "ready"),
		Entry("api ready", "/api/v1/health/ready", "ready"),
		Entry("live", "/live", "alive"),
		Entry("api live", "/api/v1/health/live", "alive"),
		Entry("watcher health", "/api/v1/watcher/health", "ok"),
	)

	It("serves metrics when a handler is configured", func() {
		rec := get(router, "/metrics")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal("# metrics\n"))
	})

	It("does not serve metrics without a handler", func() {
		handlers := transporthttp.NewHTTPHandlers(service.NewHealthService(registry), nil)

		Expect(get(transporthttp.NewRouter(handlers), "/metrics").Code).To(Equal(http.StatusNotFound))
	})

	It("rejects other methods", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

		Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
	})

	It("serves an empty report when nothing is registered", func() {
		handlers := transporthttp.NewHTTPHandlers(service.NewHealthService(checks.NewRegistry()), nil)
		rec := get(transporthttp.NewRouter(handlers), "/health")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{}`))
	})

	Describe("middleware", func() {
		It("assigns a request id", func() {
			rec := get(router, "/ping")

			Expect(rec.Header().Get("X-Request-ID")).NotTo(BeEmpty())
		})

		It("propagates the caller's request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("X-Request-ID", "req-42")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			Expect(rec.Header().Get("X-Request-ID")).To(Equal("req-42"))
		})

		It("allows cross-origin requests", func() {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", "https://monitor.example")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://monitor.example"))
			Expect(rec.Header().Get("Access-Control-Allow-Credentials")).To(Equal("true"))
		})

		It("answers preflight requests", func() {
			req := httptest.NewRequest(http.MethodOptions, "/health", nil)
			req.Header.Set("Origin", "https://monitor.example")
			req.Header.Set("Access-Control-Request-Method", "GET")
			req.Header.Set("Access-Control-Request-Headers", "Content-Type")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://monitor.example"))
			Expect(rec.Header().Get("Access-Control-Allow-Credentials")).To(Equal("true"))
			Expect(rec.Header().Get("Access-Control-Allow-Headers")).To(ContainSubstring("Content-Type"))
		})

		It("tags unmatched routes with a request id", func() {
			notFound := get(router, "/nowhere")
			Expect(notFound.Code).To(Equal(http.StatusNotFound))
			Expect(notFound.Header().Get("X-Request-ID")).NotTo(BeEmpty())

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
			Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
			Expect(rec.Header().Get("X-Request-ID")).NotTo(BeEmpty())
		})

		It("reports the request id when a handler panics", func() {
			handlers := transporthttp.NewHTTPHandlers(panickingService{}, nil)
			rec := get(transporthttp.NewRouter(handlers), "/health")

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))

			var body dto.ErrorResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.RequestID).NotTo(BeEmpty())
			Expect(body.RequestID).To(Equal(rec.Header().Get("X-Request-ID")))
		})
	})
})

var _ = Describe("HTTPServer", func() {
	It("serves over a listener and stops gracefully", func() {
		registry := checks.NewRegistry()
		registry.Register("Database", checks.Simulated(0, true))

		cfg := &config.Config{Server: config.ServerConfig{HTTPPort: "0"}}
		srv := transporthttp.NewHTTPServer(cfg, transporthttp.NewHTTPHandlers(service.NewHealthService(registry), nil))

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		done := make(chan error, 1)
		go func() { done <- srv.Serve(listener) }()

		res, err := http.Get("http://" + listener.Addr().String() + "/health")
		Expect(err).NotTo(HaveOccurred())
		defer res.Body.Close()

		var body map[string]json.RawMessage
		Expect(json.NewDecoder(res.Body).Decode(&body)).To(Succeed())
		Expect(body).To(HaveKey("Database"))

		Expect(srv.Stop(context.Background())).To(Succeed())
		Eventually(done).Should(Receive(BeNil()))
	})
})
