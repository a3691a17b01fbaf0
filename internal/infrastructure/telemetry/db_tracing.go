// Package telemetry provides OpenTelemetry integration for distributed tracing.
package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled          bool
	SlowQueryThresh  time.Duration
	DBSystem         string
	WithoutVariables bool // keep bound values out of span statements
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// DBTracingPlugin registers otelgorm plus callbacks that flag slow or failed
// statements on the current span.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

type queryStartKey struct{}

// gorm processors that receive the timing callbacks
var dbProcessors = []string{"create", "query", "update", "delete", "row", "raw"}

// Register installs the plugin on db. It is a no-op when tracing is disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if p.config.WithoutVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	for _, name := range dbProcessors {
		before, after := callbacksFor(db, name)
		if err := before.Register("otel_timing:before_"+name, p.before); err != nil {
			return err
		}
		if err := after.Register("otel_timing:after_"+name, p.after); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

type gormCallback interface {
	Register(name string, fn func(*gorm.DB)) error
}

// callbacksFor places the timing hooks inside the otelgorm span of the
// processor so the span is still current when the statement finishes.
func callbacksFor(db *gorm.DB, name string) (before, after gormCallback) {
	anchor := "gorm:" + name
	span := name
	if name == "query" {
		span = "select"
	}
	openSpan, closeSpan := "otel:before:"+span, "otel:after:"+span
	switch name {
	case "create":
		return db.Callback().Create().Before(anchor).After(openSpan), db.Callback().Create().After(anchor).Before(closeSpan)
	case "query":
		return db.Callback().Query().Before(anchor).After(openSpan), db.Callback().Query().After(anchor).Before(closeSpan)
	case "update":
		return db.Callback().Update().Before(anchor).After(openSpan), db.Callback().Update().After(anchor).Before(closeSpan)
	case "delete":
		return db.Callback().Delete().Before(anchor).After(openSpan), db.Callback().Delete().After(anchor).Before(closeSpan)
	case "row":
		return db.Callback().Row().Before(anchor).After(openSpan), db.Callback().Row().After(anchor).Before(closeSpan)
	default:
		return db.Callback().Raw().Before(anchor).After(openSpan), db.Callback().Raw().After(anchor).Before(closeSpan)
	}
}

func (p *DBTracingPlugin) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *DBTracingPlugin) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		elapsed := time.Since(start)
		if elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}
