package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pingwatch/connectivity-monitor/pkg/logger"
)

const healthQuery = "SELECT 1"

const slowHealthCheckThreshold = 100 * time.Millisecond

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type HealthRepository interface {
	HealthCheck(ctx context.Context) error
	// Check adapts HealthCheck to the dependency check contract.
	Check(ctx context.Context) (bool, error)
}

type healthRepository struct {
	db rowQuerier
}

func NewHealthRepository(db *pgxpool.Pool) HealthRepository {
	return newHealthRepository(db)
}

func newHealthRepository(db rowQuerier) *healthRepository {
	return &healthRepository{
		db: db,
	}
}

func (r *healthRepository) HealthCheck(ctx context.Context) error {
	start := time.Now()

	var result int
	err := r.db.QueryRow(ctx, healthQuery).Scan(&result)

	duration := time.Since(start)

	if err != nil {
		classified := HandlePgxError("health_check", err)
		r.logHealthCheckError(ctx, "basic_health_check", duration, classified)
		return classified
	}

	logger.LogSlowOperation(ctx, "health_check", duration, slowHealthCheckThreshold)

	slog.DebugContext(ctx, "Health check successful",
		slog.Duration("duration", duration),
		slog.Int("result", result),
	)

	return nil
}

// Check reports the database healthy when SELECT 1 returns 1.
func (r *healthRepository) Check(ctx context.Context) (bool, error) {
	if err := r.HealthCheck(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *healthRepository) logHealthCheckError(ctx context.Context, operation string, duration time.Duration, err error) {
	logger.LogDatabaseQuery(ctx, healthQuery, duration, err)

	slog.ErrorContext(ctx, "Health check failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.Duration("duration", duration),
		slog.Bool("connection_error", IsConnectionError(err)),
		slog.String("type", "health_check_failure"),
	)
}
