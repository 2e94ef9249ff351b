package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Logger", func() {
	Describe("ParseLevel", func() {
		DescribeTable("maps level names",
			func(input string, expected slog.Level) {
				Expect(ParseLevel(input)).To(Equal(expected))
			},
			Entry("debug", "debug", slog.LevelDebug),
			Entry("upper case warn", "WARN", slog.LevelWarn),
			Entry("error", "error", slog.LevelError),
			Entry("unknown falls back to info", "verbose", slog.LevelInfo),
		)
	})

	Describe("New", func() {
		It("writes JSON records tagged with the service name", func() {
			var buf bytes.Buffer
			log := New(&buf, "info", "monitor-service")
			log.Info("hello")

			var record map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
			Expect(record["service"]).To(Equal("monitor-service"))
			Expect(record["msg"]).To(Equal("hello"))
		})

		It("drops records below the configured level", func() {
			var buf bytes.Buffer
			log := New(&buf, "warn", "monitor-service")
			log.Info("quiet")

			Expect(buf.Len()).To(BeZero())
		})
	})

	Describe("SetupLogger", func() {
		var previous *slog.Logger

		BeforeEach(func() {
			previous = slog.Default()
		})

		AfterEach(func() {
			slog.SetDefault(previous)
		})

		It("creates the log file under the configured directory", func() {
			dir := GinkgoT().TempDir()
			cfg := Config{Level: "info", FilePath: filepath.Join(dir, "logs")}

			Expect(SetupLogger(cfg, "monitor-service")).To(Succeed())
			slog.Info("written")

			data, err := os.ReadFile(filepath.Join(dir, "logs", "monitor-service.log"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("written"))
		})
	})

	Describe("maskPassword", func() {
		It("hides the password in a key/value DSN", func() {
			dsn := "host=db port=5432 user=monitor password=secret dbname=monitor"
			Expect(maskPassword(dsn)).To(Equal("host=db port=5432 user=monitor password=*** dbname=monitor"))
		})

		It("leaves DSNs without a password untouched", func() {
			Expect(maskPassword("host=db")).To(Equal("host=db"))
			Expect(maskPassword("")).To(BeEmpty())
		})
	})

	Describe("request ids", func() {
		It("round-trips through the context", func() {
			ctx := ContextWithRequestID(context.Background(), "abc-123")
			Expect(RequestIDFromContext(ctx)).To(Equal("abc-123"))
		})

		It("is empty when unset", func() {
			Expect(RequestIDFromContext(context.Background())).To(BeEmpty())
		})
	})
})
