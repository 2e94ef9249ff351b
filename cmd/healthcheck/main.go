// Command healthcheck probes the monitor's HTTP health endpoint. It exits 0
// only when the endpoint answers 200, which makes it usable as a container
// HEALTHCHECK.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"github.com/pingwatch/connectivity-monitor/internal/probe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(viper.New()).ExecuteContext(ctx)
	stop()

	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if err == nil {
		return probe.ExitSuccess
	}

	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	fmt.Fprintln(os.Stderr, "error:", err)
	return probe.ExitFailure
}
