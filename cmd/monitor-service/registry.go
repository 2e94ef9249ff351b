package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pingwatch/connectivity-monitor/internal/cache"
	"github.com/pingwatch/connectivity-monitor/internal/checks"
	"github.com/pingwatch/connectivity-monitor/internal/config"
	"github.com/pingwatch/connectivity-monitor/internal/probe"
	"github.com/pingwatch/connectivity-monitor/internal/repository"
)

// buildRegistry registers the configured checks. Database and Redis clients
// are created once, on first use by a definition, and released by the
// returned cleanup.
func buildRegistry(ctx context.Context, cfg *config.Config, prober *probe.Prober) (*checks.Registry, func(), error) {
	defs, err := loadDefinitions(cfg)
	if err != nil {
		return nil, nil, err
	}

	var (
		closers    []func()
		pool       *pgxpool.Pool
		redisProbe cache.RedisProbe
	)

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	factories := checks.BuiltinFactories(prober)

	factories[checks.KindPostgres] = func(checks.Definition) (checks.Check, error) {
		if pool == nil {
			p, err := repository.NewPool(ctx, cfg.Database)
			if err != nil {
				return nil, err
			}
			pool = p
			closers = append(closers, p.Close)
		}
		return repository.NewHealthRepository(pool), nil
	}

	factories[checks.KindRedis] = func(checks.Definition) (checks.Check, error) {
		if redisProbe == nil {
			rp, err := cache.NewRedisProbe(cfg.Redis.URLs, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				return nil, err
			}
			redisProbe = rp
			closers = append(closers, func() { _ = rp.Close() })
		}
		return redisProbe, nil
	}

	registry, err := checks.Build(defs, factories)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("build check registry: %w", err)
	}

	return registry, cleanup, nil
}

func loadDefinitions(cfg *config.Config) ([]checks.Definition, error) {
	if cfg.Checks.File != "" {
		return checks.LoadDefinitions(cfg.Checks.File)
	}

	live := cfg.Checks.Mode == config.CheckModeLive
	return checks.DefaultDefinitions(live, cfg.Checks.SimulatedLatency, cfg.PingService.URL), nil
}
