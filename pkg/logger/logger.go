package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	Level    string `env:"LOG_LEVEL" envDefault:"info"`
	FilePath string `env:"LOG_FILE_PATH"`
	FileName string `env:"LOG_FILE_NAME"`
}

// SetupLogger installs a JSON slog logger as the process default. Logs go to
// FilePath/FileName when FilePath is set and to stdout otherwise.
func SetupLogger(cfg Config, serviceName string) error {
	var out io.Writer = os.Stdout

	if cfg.FilePath != "" {
		if err := os.MkdirAll(cfg.FilePath, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		if cfg.FileName == "" {
			cfg.FileName = fmt.Sprintf("%s.log", serviceName)
		}

		fullPath := filepath.Join(cfg.FilePath, cfg.FileName)

		logFile, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = logFile
	}

	slog.SetDefault(New(out, cfg.Level, serviceName))

	return nil
}

func New(out io.Writer, level string, serviceName string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	return slog.New(slog.NewJSONHandler(out, opts)).With(
		slog.String("service", serviceName),
	)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func LogHTTPRequest(ctx context.Context, method, path, userAgent, requestID string, duration time.Duration, statusCode int) {
	if ctx == nil {
		ctx = context.Background()
	}

	attrs := []slog.Attr{
		slog.String("type", "http_request"),
		slog.String("method", method),
		slog.String("path", path),
		slog.String("user_agent", userAgent),
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("status_code", statusCode),
	}

	if statusCode >= 500 {
		slog.LogAttrs(ctx, slog.LevelError, "HTTP Request", attrs...)
	} else if statusCode >= 400 {
		slog.LogAttrs(ctx, slog.LevelWarn, "HTTP Request", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "HTTP Request", attrs...)
	}
}

func LogGRPCRequest(ctx context.Context, method string, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "grpc_request"),
		slog.String("method", method),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "gRPC Request Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "gRPC Request", attrs...)
	}
}

// LogDependencyCheck records the terminal state of a single dependency check.
// Unhealthy outcomes are warnings: the aggregator has already absorbed them.
func LogDependencyCheck(ctx context.Context, dependency, label string, healthy bool, duration time.Duration) {
	attrs := []slog.Attr{
		slog.String("type", "dependency_check"),
		slog.String("dependency", dependency),
		slog.String("outcome", label),
		slog.Bool("healthy", healthy),
		slog.Duration("duration", duration),
	}

	if healthy {
		slog.LogAttrs(ctx, slog.LevelDebug, "Dependency Check", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelWarn, "Dependency Check Failed", attrs...)
	}
}

func LogHealthReport(ctx context.Context, total, unhealthy int, duration time.Duration) {
	attrs := []slog.Attr{
		slog.String("type", "health_report"),
		slog.Int("dependencies", total),
		slog.Int("unhealthy", unhealthy),
		slog.Duration("duration", duration),
	}

	slog.LogAttrs(ctx, slog.LevelInfo, "Health Report", attrs...)
}

func LogDatabaseQuery(ctx context.Context, query string, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "database_query"),
		slog.String("query", query),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Database Query Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "Database Query", attrs...)
	}
}

func LogDatabaseConnection(ctx context.Context, dsn string, operation string, err error) {
	maskedDSN := maskPassword(dsn)

	attrs := []slog.Attr{
		slog.String("type", "database_connection"),
		slog.String("dsn", maskedDSN),
		slog.String("operation", operation),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Database Connection Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "Database Connection", attrs...)
	}
}

func LogRedisShardConnection(ctx context.Context, shardIndex int, addr string, err error) {
	attrs := []slog.Attr{
		slog.String("type", "redis_shard_connection"),
		slog.Int("shard_index", shardIndex),
		slog.String("address", addr),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Redis Shard Connection Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "Redis Shard Connected", attrs...)
	}
}

func LogProbe(ctx context.Context, url string, statusCode int, latency time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "probe"),
		slog.String("url", url),
		slog.Int("status_code", statusCode),
		slog.Duration("latency", latency),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelWarn, "Probe Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "Probe", attrs...)
	}
}

func LogError(ctx context.Context, err error, operation string, additionalFields ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("type", "error"),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}
	attrs = append(attrs, additionalFields...)

	slog.LogAttrs(ctx, slog.LevelError, "Operation Error", attrs...)
}

func LogSlowOperation(ctx context.Context, operation string, duration time.Duration, threshold time.Duration) {
	if duration <= threshold {
		return
	}

	attrs := []slog.Attr{
		slog.String("type", "slow_operation"),
		slog.String("operation", operation),
		slog.Duration("duration", duration),
		slog.Duration("threshold", threshold),
	}

	slog.LogAttrs(ctx, slog.LevelWarn, "Slow Operation Detected", attrs...)
}

func LogServiceStart(serviceName string, config map[string]interface{}) {
	attrs := []slog.Attr{
		slog.String("type", "service_lifecycle"),
		slog.String("event", "start"),
		slog.String("service", serviceName),
		slog.Any("config", config),
	}

	slog.LogAttrs(context.Background(), slog.LevelInfo, "Service Starting", attrs...)
}

func LogServiceStop(serviceName string, reason string) {
	attrs := []slog.Attr{
		slog.String("type", "service_lifecycle"),
		slog.String("event", "stop"),
		slog.String("service", serviceName),
		slog.String("reason", reason),
	}

	slog.LogAttrs(context.Background(), slog.LevelInfo, "Service Stopping", attrs...)
}

func WithRequestID(requestID string) *slog.Logger {
	return slog.With(slog.String("request_id", requestID))
}

type contextKey string

const requestIDKey contextKey = "request_id"

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request id set by the transport
// middleware, or "" when there is none.
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func maskPassword(dsn string) string {
	if dsn == "" {
		return dsn
	}

	start := strings.Index(dsn, "password=")
	if start == -1 {
		return dsn
	}

	start += len("password=")
	end := start

	for end < len(dsn) && dsn[end] != ' ' && dsn[end] != '&' {
		end++
	}

	masked := dsn[:start] + "***"
	if end < len(dsn) {
		masked += dsn[end:]
	}

	return masked
}
