package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pingwatch/connectivity-monitor/internal/probe"
	"github.com/pingwatch/connectivity-monitor/pkg/logger"
)

const (
	keyHost     = "host"
	keyPort     = "port"
	keyPath     = "path"
	keyLogLevel = "log-level"
)

// exitCodeError carries a probe failure out of cobra without an extra
// error line; the result message has already been printed.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe the monitor's health endpoint",
		Long:  "healthcheck issues one GET against the monitor and exits 0 only on HTTP 200.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logger.New(os.Stderr, v.GetString(keyLogLevel), "healthcheck"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			result := probe.New(probe.DefaultTimeout).Check(cmd.Context(), targetURL(v))
			fmt.Fprintln(cmd.OutOrStdout(), result.Message())

			if !result.OK() {
				return &exitCodeError{code: result.ExitCode()}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String(keyHost, "localhost", "Host of the monitor (env HEALTHCHECK_HOST)")
	flags.String(keyPort, "8000", "Port of the monitor (env HEALTHCHECK_PORT)")
	flags.String(keyPath, "/health", "Path of the health endpoint (env HEALTHCHECK_PATH)")
	flags.String(keyLogLevel, "error", "Log level for diagnostics on stderr (env HEALTHCHECK_LOG_LEVEL)")

	for _, key := range []string{keyHost, keyPort, keyPath, keyLogLevel} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}
	_ = v.BindEnv(keyHost, "HEALTHCHECK_HOST")
	_ = v.BindEnv(keyPort, "HEALTHCHECK_PORT")
	_ = v.BindEnv(keyPath, "HEALTHCHECK_PATH")
	_ = v.BindEnv(keyLogLevel, "HEALTHCHECK_LOG_LEVEL")

	root.AddCommand(newWatchCmd(v))

	return root
}

func targetURL(v *viper.Viper) string {
	return probe.URL(v.GetString(keyHost), v.GetString(keyPort), v.GetString(keyPath))
}

func newWatchCmd(v *viper.Viper) *cobra.Command {
	var (
		interval time.Duration
		history  int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Probe on an interval and report connectivity changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := validation.Errors{
				// Min skips zero values, so Required is what rejects 0.
				"interval": validation.Validate(interval, validation.Required, validation.Min(time.Millisecond)),
				"history":  validation.Validate(history, validation.Required, validation.Min(1)),
			}.Filter()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			watcher := probe.NewWatcher(probe.New(probe.DefaultTimeout), targetURL(v), probe.WatcherConfig{
				Interval:    interval,
				HistorySize: history,
				Observe: func(result probe.Result, previous, current probe.Status) {
					if previous != current {
						fmt.Fprintf(out, "status: %s -> %s\n", previous, current)
					}
					fmt.Fprintf(out, "%s %s (%s)\n",
						result.CheckedAt.Format(time.RFC3339), result.Message(), result.Latency.Round(time.Millisecond))
				},
			})

			watcher.Run(cmd.Context())
			printHistory(out, watcher.Status(), watcher.History())

			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", probe.DefaultInterval, "Time between probes")
	cmd.Flags().IntVar(&history, "history", probe.DefaultHistorySize, "Number of recent results to keep")

	return cmd
}

func printHistory(out io.Writer, status probe.Status, history []probe.Result) {
	fmt.Fprintf(out, "final status: %s\n", status)
	for _, result := range history {
		code := "-"
		if result.Err == nil {
			code = fmt.Sprint(result.StatusCode)
		}
		fmt.Fprintf(out, "  %s %s %s\n",
			result.CheckedAt.Format(time.RFC3339), code, result.Latency.Round(time.Millisecond))
	}
}
