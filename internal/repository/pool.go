package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pingwatch/connectivity-monitor/internal/config"
	"github.com/pingwatch/connectivity-monitor/pkg/logger"
)

// NewPool builds a connection pool without dialing. Connections are opened on
// first use, so an unreachable database shows up in the health report rather
// than preventing the service from starting.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	dsn := cfg.DSN()

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.LogDatabaseConnection(ctx, dsn, "parse_config", err)
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolCfg.MaxConns = 2
	poolCfg.MinConns = 0
	poolCfg.MaxConnIdleTime = time.Minute
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.LogDatabaseConnection(ctx, dsn, "create_pool", err)
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	logger.LogDatabaseConnection(ctx, dsn, "create_pool", nil)

	return pool, nil
}
