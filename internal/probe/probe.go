package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pingwatch/connectivity-monitor/pkg/logger"
)

const DefaultTimeout = 5 * time.Second

const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Result is the outcome of one GET against a health endpoint.
type Result struct {
	URL        string
	StatusCode int
	Latency    time.Duration
	CheckedAt  time.Time
	Err        error
}

// OK reports whether the endpoint answered exactly 200.
func (r Result) OK() bool {
	return r.Err == nil && r.StatusCode == http.StatusOK
}

func (r Result) ExitCode() int {
	if r.OK() {
		return ExitSuccess
	}
	return ExitFailure
}

// Message renders the operator-facing line for the result.
func (r Result) Message() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("Health check failed to connect to %s: %v", r.URL, r.Err)
	case r.StatusCode == http.StatusOK:
		return fmt.Sprintf("Health check successful: %s returned 200 OK.", r.URL)
	default:
		return fmt.Sprintf("Health check failed: %s returned status code %d.", r.URL, r.StatusCode)
	}
}

// Prober issues bounded GET requests. The zero value is not usable; build it
// with New.
type Prober struct {
	client *http.Client
}

func New(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Prober{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Check performs a single GET against url. It never retries.
func (p *Prober) Check(ctx context.Context, url string) Result {
	start := time.Now()
	result := Result{URL: url, CheckedAt: start}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Err = err
		result.Latency = time.Since(start)
		logger.LogProbe(ctx, url, 0, result.Latency, err)
		return result
	}

	res, err := p.client.Do(req)
	result.Latency = time.Since(start)
	if err != nil {
		result.Err = err
		logger.LogProbe(ctx, url, 0, result.Latency, err)
		return result
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	result.StatusCode = res.StatusCode
	logger.LogProbe(ctx, url, res.StatusCode, result.Latency, nil)

	return result
}

// URL joins host, port and path into the probe target.
func URL(host, port, path string) string {
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	return fmt.Sprintf("http://%s:%s%s", host, port, path)
}
