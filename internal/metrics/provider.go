// Package metrics exports dependency check metrics through OpenTelemetry.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "github.com/pingwatch/connectivity-monitor"

// Provider owns the meter provider and, for the prometheus exporter, the
// scrape handler.
type Provider struct {
	mp      *sdkmetric.MeterProvider
	handler http.Handler
}

// NewProvider builds a meter provider for the named exporter: prometheus,
// stdout or none.
func NewProvider(ctx context.Context, exporter, serviceName string) (*Provider, error) {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	var (
		reader  sdkmetric.Reader
		handler http.Handler
	)

	switch exporter {
	case "prometheus":
		registry := prometheus.NewRegistry()
		exp, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		reader = exp
		handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	case "stdout":
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stdout))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exp)

	case "none", "":
		// No reader: instruments aggregate nothing and nothing is exported.

	default:
		return nil, fmt.Errorf("unknown metrics exporter: %q", exporter)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if reader != nil {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	mp := sdkmetric.NewMeterProvider(opts...)

	return &Provider{mp: mp, handler: handler}, nil
}

func (p *Provider) Meter() metric.Meter {
	return p.mp.Meter(meterName)
}

// Handler returns the scrape handler, or nil when the exporter is not
// prometheus.
func (p *Provider) Handler() http.Handler {
	return p.handler
}

func (p *Provider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}
