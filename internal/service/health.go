package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pingwatch/connectivity-monitor/internal/checks"
	svcerrors "github.com/pingwatch/connectivity-monitor/internal/errors"
	"github.com/pingwatch/connectivity-monitor/internal/metrics"
	"github.com/pingwatch/connectivity-monitor/internal/model"
	"github.com/pingwatch/connectivity-monitor/pkg/logger"
)

const DefaultCheckTimeout = 5 * time.Second

// HealthService runs the registered dependency checks.
type HealthService interface {
	// Health runs every check concurrently and settles all of them into a
	// report. It never fails: check errors become unhealthy entries.
	Health(ctx context.Context) *model.HealthReport
	// Check runs a single registered check.
	Check(ctx context.Context, name string) (model.CheckOutcome, error)
	Dependencies() []string
}

type Option func(*healthService)

// WithCheckTimeout bounds every check. A check still running at the deadline
// is reported as failed and left behind.
func WithCheckTimeout(timeout time.Duration) Option {
	return func(s *healthService) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithRecorder(recorder metrics.Recorder) Option {
	return func(s *healthService) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

type healthService struct {
	registry *checks.Registry
	timeout  time.Duration
	recorder metrics.Recorder
}

func NewHealthService(registry *checks.Registry, opts ...Option) HealthService {
	s := &healthService{
		registry: registry,
		timeout:  DefaultCheckTimeout,
		recorder: metrics.NopRecorder(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *healthService) Health(ctx context.Context) *model.HealthReport {
	start := time.Now()
	entries := s.registry.Entries()

	// Each goroutine owns one slot, so no locking is needed.
	outcomes := make([]model.CheckOutcome, len(entries))

	// No goroutine returns an error: failures are settled into outcomes, so
	// one check never cancels the others. Wait is only a join.
	var g errgroup.Group
	for i, entry := range entries {
		g.Go(func() error {
			outcomes[i] = s.run(ctx, entry)
			return nil
		})
	}
	_ = g.Wait()

	report := model.NewHealthReport(len(entries))
	for i, entry := range entries {
		report.Set(entry.Name, outcomes[i])
	}

	duration := time.Since(start)
	s.recorder.RecordReport(ctx, report, duration)
	logger.LogHealthReport(ctx, report.Len(), report.UnhealthyCount(), duration)

	return report
}

func (s *healthService) Check(ctx context.Context, name string) (model.CheckOutcome, error) {
	check, ok := s.registry.Get(name)
	if !ok {
		return model.CheckOutcome{}, svcerrors.ErrUnknownDependency
	}

	return s.run(ctx, checks.Entry{Name: name, Check: check}), nil
}

func (s *healthService) Dependencies() []string {
	return s.registry.Names()
}

type checkResult struct {
	healthy bool
	err     error
}

func (s *healthService) run(ctx context.Context, entry checks.Entry) model.CheckOutcome {
	start := time.Now()

	ctx, cancel := context.WithTimeoutCause(ctx, s.timeout, &svcerrors.CheckTimeoutError{Timeout: s.timeout})
	defer cancel()

	resultCh := make(chan checkResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- checkResult{err: &svcerrors.CheckPanicError{Value: r}}
			}
		}()

		healthy, err := entry.Check.Check(ctx)
		resultCh <- checkResult{healthy: healthy, err: err}
	}()

	var outcome model.CheckOutcome

	select {
	case result := <-resultCh:
		err := result.err
		if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			err = context.Cause(ctx)
		}
		outcome = model.OutcomeOf(result.healthy, err)
	case <-ctx.Done():
		outcome = model.Failed(context.Cause(ctx))
	}

	duration := time.Since(start)
	s.recorder.RecordCheck(ctx, entry.Name, outcome, duration)
	logger.LogDependencyCheck(ctx, entry.Name, outcome.Label, outcome.Healthy, duration)

	return outcome
}
