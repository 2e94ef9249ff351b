package checks

import (
	"context"

	"github.com/pingwatch/connectivity-monitor/internal/probe"
)

// HTTPCheck reports healthy when url answers 200. Other status codes are
// unhealthy; transport errors are failures.
func HTTPCheck(prober *probe.Prober, url string) Check {
	return CheckFunc(func(ctx context.Context) (bool, error) {
		result := prober.Check(ctx, url)
		if result.Err != nil {
			return false, result.Err
		}
		return result.OK(), nil
	})
}
