package checks

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/pingwatch/connectivity-monitor/internal/model"
	"github.com/pingwatch/connectivity-monitor/internal/probe"
)

const (
	KindSimulated = "simulated"
	KindPostgres  = "postgres"
	KindRedis     = "redis"
	KindHTTP      = "http"
)

// Definition describes one check to register at startup.
type Definition struct {
	Name    string        `yaml:"name"`
	Kind    string        `yaml:"kind"`
	URL     string        `yaml:"url,omitempty"`
	Latency time.Duration `yaml:"latency,omitempty"`
	Healthy *bool         `yaml:"healthy,omitempty"`
}

type definitionsFile struct {
	Checks []Definition `yaml:"checks"`
}

func (d Definition) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.Kind, validation.Required, validation.In(KindSimulated, KindPostgres, KindRedis, KindHTTP)),
		validation.Field(&d.URL, validation.When(d.Kind == KindHTTP, validation.Required, validation.By(validateHTTPURL))),
		validation.Field(&d.Latency, validation.Min(time.Duration(0))),
	)
}

func validateHTTPURL(value interface{}) error {
	raw, _ := value.(string)
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return validation.NewError("validation_invalid_url", "must be an http or https URL")
	}
	return nil
}

// LoadDefinitions reads a YAML definitions file.
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checks file: %w", err)
	}
	return ParseDefinitions(data)
}

// ParseDefinitions decodes definitions, rejecting unknown fields, empty
// lists and duplicate names.
func ParseDefinitions(data []byte) ([]Definition, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var file definitionsFile
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode checks file: %w", err)
	}

	if len(file.Checks) == 0 {
		return nil, errors.New("checks file defines no checks")
	}

	seen := make(map[string]struct{}, len(file.Checks))
	for i, def := range file.Checks {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("check %d: %w", i, err)
		}
		if _, dup := seen[def.Name]; dup {
			return nil, fmt.Errorf("check %d: duplicate name %q", i, def.Name)
		}
		seen[def.Name] = struct{}{}
	}

	return file.Checks, nil
}

// DefaultDefinitions returns the stock Database, Redis and Ping Service
// registrations, simulated or live.
func DefaultDefinitions(live bool, latency time.Duration, pingURL string) []Definition {
	if !live {
		return []Definition{
			{Name: model.DependencyDatabase, Kind: KindSimulated, Latency: latency},
			{Name: model.DependencyRedis, Kind: KindSimulated, Latency: latency},
			{Name: model.DependencyPingService, Kind: KindSimulated, Latency: latency},
		}
	}

	return []Definition{
		{Name: model.DependencyDatabase, Kind: KindPostgres},
		{Name: model.DependencyRedis, Kind: KindRedis},
		{Name: model.DependencyPingService, Kind: KindHTTP, URL: pingURL},
	}
}

// Factory builds a check from its definition.
type Factory func(def Definition) (Check, error)

// BuiltinFactories covers the kinds that need no external client.
func BuiltinFactories(prober *probe.Prober) map[string]Factory {
	return map[string]Factory{
		KindSimulated: func(def Definition) (Check, error) {
			healthy := true
			if def.Healthy != nil {
				healthy = *def.Healthy
			}
			return Simulated(def.Latency, healthy), nil
		},
		KindHTTP: func(def Definition) (Check, error) {
			return HTTPCheck(prober, def.URL), nil
		},
	}
}

// Build registers every definition in order using the factory for its kind.
func Build(defs []Definition, factories map[string]Factory) (*Registry, error) {
	registry := NewRegistry()

	for _, def := range defs {
		factory, ok := factories[def.Kind]
		if !ok {
			return nil, fmt.Errorf("check %q: no factory for kind %q", def.Name, def.Kind)
		}

		check, err := factory(def)
		if err != nil {
			return nil, fmt.Errorf("check %q: %w", def.Name, err)
		}

		registry.Register(def.Name, check)
	}

	return registry, nil
}
