package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls query spans.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include bound variables in db.statement (dev only)
	SlowQueryThresh time.Duration // queries slower than this get a slow_query_warning event
}

// RegisterDBTracing installs otelgorm on db plus callbacks that flag slow
// statements on otelgorm's query span. otelgorm itself records the table,
// rows affected and errors.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	c := &queryAnnotator{slowQueryThresh: cfg.SlowQueryThresh}
	if err := c.register(db); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh))
	return nil
}

type queryStartKey struct{}

type queryStart struct {
	at   time.Time
	span trace.Span
}

// queryAnnotator adds slow-query markers to the span otelgorm opened for a
// statement. before runs after otelgorm starts the span and pins it, so after
// never touches the caller's span.
type queryAnnotator struct {
	slowQueryThresh time.Duration
}

func (c *queryAnnotator) before(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	db.Statement.Context = context.WithValue(ctx, queryStartKey{}, queryStart{
		at:   time.Now(),
		span: trace.SpanFromContext(ctx),
	})
}

func (c *queryAnnotator) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	qs, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok || !qs.span.IsRecording() {
		return
	}
	if trace.SpanFromContext(ctx).SpanContext().SpanID() != qs.span.SpanContext().SpanID() {
		return
	}

	if elapsed := time.Since(qs.at); elapsed > c.slowQueryThresh {
		qs.span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		qs.span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", c.slowQueryThresh.Milliseconds()),
		))
	}
}

func (c *queryAnnotator) register(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().After("otel:before:create").Before("gorm:create").Register("shop_timing:before_create", c.before),
		cb.Query().After("otel:before:select").Before("gorm:query").Register("shop_timing:before_query", c.before),
		cb.Update().After("otel:before:update").Before("gorm:update").Register("shop_timing:before_update", c.before),
		cb.Delete().After("otel:before:delete").Before("gorm:delete").Register("shop_timing:before_delete", c.before),
		cb.Row().After("otel:before:row").Before("gorm:row").Register("shop_timing:before_row", c.before),
		cb.Raw().After("otel:before:raw").Before("gorm:raw").Register("shop_timing:before_raw", c.before),
		cb.Create().After("gorm:create").Before("otel:after:create").Register("shop_annotate:create", c.after),
		cb.Query().After("gorm:query").Before("otel:after:select").Register("shop_annotate:query", c.after),
		cb.Update().After("gorm:update").Before("otel:after:update").Register("shop_annotate:update", c.after),
		cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("shop_annotate:delete", c.after),
		cb.Row().After("gorm:row").Before("otel:after:row").Register("shop_annotate:row", c.after),
		cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("shop_annotate:raw", c.after),
	)
}
