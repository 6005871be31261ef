package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/stockroom/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type contextKey string

const queryStartKey contextKey = "otel_query_start"

// defaultSlowQuery applies when the config leaves the threshold unset
const defaultSlowQuery = 200 * time.Millisecond

// InstrumentDB registers otelgorm on db plus callbacks that tag slow queries
// on the active span. It does nothing unless DB tracing is enabled.
func InstrumentDB(db *gorm.DB, cfg config.TelemetryConfig, dbSystem string, logger *zap.Logger) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(dbSystem)}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	threshold := cfg.DBSlowQueryThresh
	if threshold <= 0 {
		threshold = defaultSlowQuery
	}
	if err := registerTimingCallbacks(db, threshold); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", dbSystem),
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
		zap.Duration("slow_query_threshold", threshold),
	)
	return nil
}

func registerTimingCallbacks(db *gorm.DB, threshold time.Duration) error {
	cb := db.Callback()
	after := slowQueryCallback(threshold)
	return errors.Join(
		cb.Create().Before("gorm:create").Register("stockroom:start_create", markQueryStart),
		cb.Query().Before("gorm:query").Register("stockroom:start_query", markQueryStart),
		cb.Update().Before("gorm:update").Register("stockroom:start_update", markQueryStart),
		cb.Delete().Before("gorm:delete").Register("stockroom:start_delete", markQueryStart),
		cb.Row().Before("gorm:row").Register("stockroom:start_row", markQueryStart),
		cb.Raw().Before("gorm:raw").Register("stockroom:start_raw", markQueryStart),

		cb.Create().After("gorm:create").Register("stockroom:slow_create", after),
		cb.Query().After("gorm:query").Register("stockroom:slow_query", after),
		cb.Update().After("gorm:update").Register("stockroom:slow_update", after),
		cb.Delete().After("gorm:delete").Register("stockroom:slow_delete", after),
		cb.Row().After("gorm:row").Register("stockroom:slow_row", after),
		cb.Raw().After("gorm:raw").Register("stockroom:slow_raw", after),
	)
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey, time.Now())
	}
}

func slowQueryCallback(threshold time.Duration) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}

		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			RecordError(span, db.Error)
		}

		start, ok := ctx.Value(queryStartKey).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed > threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
