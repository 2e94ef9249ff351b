package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	CheckModeSimulated = "simulated"
	CheckModeLive      = "live"
)

const (
	MetricsExporterPrometheus = "prometheus"
	MetricsExporterStdout     = "stdout"
	MetricsExporterNone       = "none"
)

type Config struct {
	Server      ServerConfig
	Logging     LoggingConfig
	Checks      ChecksConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	PingService PingServiceConfig
	Metrics     MetricsConfig
}

type ServerConfig struct {
	HTTPPort     string
	GRPCPort     string
	GRPCEnabled  bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type LoggingConfig struct {
	Level    string
	FilePath string
	FileName string
}

// ChecksConfig controls how the dependency registry is built and how long a
// single check may run before it is reported as failed.
type ChecksConfig struct {
	Mode             string
	Timeout          time.Duration
	SimulatedLatency time.Duration
	File             string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

type RedisConfig struct {
	URLs     []string
	Password string
	DB       int
}

type PingServiceConfig struct {
	URL string
}

type MetricsConfig struct {
	Exporter string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			HTTPPort:     getEnv("HTTP_PORT", "8000"),
			GRPCPort:     getEnv("GRPC_PORT", "9090"),
			GRPCEnabled:  getEnvBool("GRPC_ENABLED", true),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			FilePath: getEnv("LOG_FILE_PATH", ""),
			FileName: getEnv("LOG_FILE_NAME", "monitor-service.log"),
		},
		Checks: ChecksConfig{
			Mode:             strings.ToLower(getEnv("CHECK_MODE", CheckModeSimulated)),
			Timeout:          getEnvDuration("CHECK_TIMEOUT", 5*time.Second),
			SimulatedLatency: getEnvDuration("SIMULATED_LATENCY", 100*time.Millisecond),
			File:             getEnv("CHECKS_FILE", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "monitor"),
			User:     getEnv("DB_USER", "monitor"),
			Password: getEnv("DB_PASSWORD", ""),
		},
		Redis: RedisConfig{
			URLs:     ParseList(getEnv("REDIS_URLS", "localhost:6379")),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		PingService: PingServiceConfig{
			URL: getEnv("PING_SERVICE_URL", "http://localhost:8000/ping"),
		},
		Metrics: MetricsConfig{
			Exporter: strings.ToLower(getEnv("METRICS_EXPORTER", MetricsExporterPrometheus)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server, validation.By(func(value interface{}) error {
			sc := value.(ServerConfig)
			return validation.ValidateStruct(&sc,
				validation.Field(&sc.HTTPPort, validation.Required, is.Port),
				validation.Field(&sc.GRPCPort, validation.When(sc.GRPCEnabled, validation.Required, is.Port)),
			)
		})),
		validation.Field(&c.Logging, validation.By(func(value interface{}) error {
			lc := value.(LoggingConfig)
			return validation.ValidateStruct(&lc,
				validation.Field(&lc.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
			)
		})),
		validation.Field(&c.Checks, validation.By(func(value interface{}) error {
			cc := value.(ChecksConfig)
			return validation.ValidateStruct(&cc,
				validation.Field(&cc.Mode, validation.Required, validation.In(CheckModeSimulated, CheckModeLive)),
				validation.Field(&cc.Timeout, validation.Required, validation.Min(time.Millisecond)),
				validation.Field(&cc.SimulatedLatency, validation.Min(time.Duration(0))),
			)
		})),
		validation.Field(&c.PingService, validation.By(func(value interface{}) error {
			pc := value.(PingServiceConfig)
			return validation.ValidateStruct(&pc,
				validation.Field(&pc.URL, validation.Required, validation.By(validateHTTPURL)),
			)
		})),
		validation.Field(&c.Metrics, validation.By(func(value interface{}) error {
			mc := value.(MetricsConfig)
			return validation.ValidateStruct(&mc,
				validation.Field(&mc.Exporter, validation.Required,
					validation.In(MetricsExporterPrometheus, MetricsExporterStdout, MetricsExporterNone)),
			)
		})),
	)
}

// DSN renders a key/value connection string. The password is left out when
// empty, since "password= dbname=x" would read dbname=x as the password.
func (c *DatabaseConfig) DSN() string {
	parts := []string{
		"host=" + quoteDSNValue(c.Host),
		fmt.Sprintf("port=%d", c.Port),
		"user=" + quoteDSNValue(c.User),
	}
	if c.Password != "" {
		parts = append(parts, "password="+quoteDSNValue(c.Password))
	}
	parts = append(parts, "dbname="+quoteDSNValue(c.Name), "sslmode=disable")

	return strings.Join(parts, " ")
}

func quoteDSNValue(value string) string {
	if value != "" && !strings.ContainsAny(value, " '\\") {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}

func validateHTTPURL(value interface{}) error {
	raw, _ := value.(string)

	parsed, err := url.Parse(raw)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsed.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}

// ParseList splits a comma separated value, dropping blanks.
func ParseList(values string) []string {
	if values == "" {
		return []string{}
	}

	parts := strings.Split(values, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
