package checks_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pingwatch/connectivity-monitor/internal/checks"
	"github.com/pingwatch/connectivity-monitor/internal/probe"
)

var _ = Describe("Definitions", func() {
	Describe("ParseDefinitions", func() {
		It("decodes every supported field", func() {
			defs, err := checks.ParseDefinitions([]byte(`
checks:
  - name: Database
    kind: postgres
  - name: Upstream
    kind: simulated
    latency: 250ms
    healthy: false
  - name: Ping Service
    kind: http
    url: http://pinger:8000/ping
`))
			Expect(err).NotTo(HaveOccurred())
			Expect(defs).To(HaveLen(3))
			Expect(defs[1].Latency).To(Equal(250 * time.Millisecond))
			Expect(*defs[1].Healthy).To(BeFalse())
			Expect(defs[2].URL).To(Equal("http://pinger:8000/ping"))
		})

		It("rejects unknown fields", func() {
			_, err := checks.ParseDefinitions([]byte(`
checks:
  - name: Database
    kind: postgres
    retries: 3
`))
			Expect(err).To(HaveOccurred())
		})

		It("rejects an empty file", func() {
			_, err := checks.ParseDefinitions([]byte(``))
			Expect(err).To(MatchError(ContainSubstring("no checks")))
		})

		It("rejects duplicate names", func() {
			_, err := checks.ParseDefinitions([]byte(`
checks:
  - {name: Redis, kind: redis}
  - {name: Redis, kind: simulated}
`))
			Expect(err).To(MatchError(ContainSubstring("duplicate")))
		})

		It("requires a URL for http checks", func() {
			_, err := checks.ParseDefinitions([]byte(`
checks:
  - {name: Ping Service, kind: http}
`))
			Expect(err).To(HaveOccurred())
		})

		It("rejects unknown kinds", func() {
			_, err := checks.ParseDefinitions([]byte(`
checks:
  - {name: Queue, kind: kafka}
`))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("LoadDefinitions", func() {
		It("reads definitions from disk", func() {
			path := filepath.Join(GinkgoT().TempDir(), "checks.yaml")
			Expect(os.WriteFile(path, []byte("checks:\n  - {name: Redis, kind: redis}\n"), 0o644)).To(Succeed())

			defs, err := checks.LoadDefinitions(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(defs[0].Name).To(Equal("Redis"))
		})

		It("reports a missing file", func() {
			_, err := checks.LoadDefinitions(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DefaultDefinitions", func() {
		It("registers the three stock dependencies in order", func() {
			for _, live := range []bool{false, true} {
				defs := checks.DefaultDefinitions(live, 100*time.Millisecond, "http://localhost:8000/ping")
				names := []string{defs[0].Name, defs[1].Name, defs[2].Name}
				Expect(names).To(Equal([]string{"Database", "Redis", "Ping Service"}))
			}
		})

		It("uses simulated checks unless live", func() {
			for _, def := range checks.DefaultDefinitions(false, time.Millisecond, "") {
				Expect(def.Kind).To(Equal(checks.KindSimulated))
			}
			live := checks.DefaultDefinitions(true, 0, "http://pinger/ping")
			Expect(live[0].Kind).To(Equal(checks.KindPostgres))
			Expect(live[1].Kind).To(Equal(checks.KindRedis))
			Expect(live[2].Kind).To(Equal(checks.KindHTTP))
		})
	})

	Describe("Build", func() {
		It("builds a registry in definition order", func() {
			defs := checks.DefaultDefinitions(false, 0, "")
			registry, err := checks.Build(defs, checks.BuiltinFactories(probe.New(time.Second)))
			Expect(err).NotTo(HaveOccurred())
			Expect(registry.Names()).To(Equal([]string{"Database", "Redis", "Ping Service"}))

			check, _ := registry.Get("Redis")
			healthy, err := check.Check(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(healthy).To(BeTrue())
		})

		It("fails when a kind has no factory", func() {
			defs := []checks.Definition{{Name: "Database", Kind: checks.KindPostgres}}
			_, err := checks.Build(defs, checks.BuiltinFactories(probe.New(time.Second)))
			Expect(err).To(MatchError(ContainSubstring("no factory")))
		})

		It("surfaces factory errors", func() {
			factories := map[string]checks.Factory{
				checks.KindRedis: func(checks.Definition) (checks.Check, error) {
					return nil, errors.New("no shards")
				},
			}
			_, err := checks.Build([]checks.Definition{{Name: "Redis", Kind: checks.KindRedis}}, factories)
			Expect(err).To(MatchError(ContainSubstring("no shards")))
		})
	})
})
