// Package checks defines the dependency check contract and the checks the
// monitor ships with.
package checks

import (
	"context"
	"time"
)

// Check probes one external dependency. It returns true when the dependency
// is healthy and false when it answered but is unhealthy. Errors are not
// handled by the check itself.
type Check interface {
	Check(ctx context.Context) (bool, error)
}

// CheckFunc adapts a plain function to Check.
type CheckFunc func(ctx context.Context) (bool, error)

func (f CheckFunc) Check(ctx context.Context) (bool, error) {
	return f(ctx)
}

const DefaultSimulatedLatency = 100 * time.Millisecond

// Simulated waits for latency and then reports healthy. It stands in for a
// real probe until one is wired.
func Simulated(latency time.Duration, healthy bool) Check {
	return CheckFunc(func(ctx context.Context) (bool, error) {
		timer := time.NewTimer(latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
			return healthy, nil
		}
	})
}
