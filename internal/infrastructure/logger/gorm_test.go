package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGorm(level gormlogger.LogLevel, opts ...GormOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func stmt(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	l, _ := newObservedGorm(gormlogger.Info)
	other := l.LogMode(gormlogger.Silent).(*GormLogger)

	assert.Equal(t, gormlogger.Info, l.level)
	assert.Equal(t, gormlogger.Silent, other.level)
}

func TestGormLogger_Trace(t *testing.T) {
	const sql = `SELECT * FROM "products" WHERE id = 1 FOR UPDATE`
	now := time.Now()

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		opts    []GormOption
		begin   time.Time
		err     error
		wantMsg string
		wantLvl zapcore.Level
	}{
		{"error logged", gormlogger.Error, nil, now, errors.New("deadlock detected"), "SQL error", zapcore.ErrorLevel},
		{"not found suppressed", gormlogger.Info, nil, now, gormlogger.ErrRecordNotFound, "", 0},
		{"not found opt-in", gormlogger.Error, []GormOption{WithRecordNotFound()}, now, gormlogger.ErrRecordNotFound, "SQL error", zapcore.ErrorLevel},
		{"slow statement", gormlogger.Warn, []GormOption{WithSlowThreshold(time.Millisecond)}, now.Add(-time.Second), nil, "Slow SQL", zapcore.WarnLevel},
		{"slow disabled", gormlogger.Warn, []GormOption{WithSlowThreshold(0)}, now.Add(-time.Second), nil, "", 0},
		{"info traces at debug", gormlogger.Info, nil, now, nil, "SQL", zapcore.DebugLevel},
		{"warn skips fast statements", gormlogger.Warn, nil, now, nil, "", 0},
		{"silent", gormlogger.Silent, nil, now, errors.New("boom"), "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, logs := newObservedGorm(tt.level, tt.opts...)
			l.Trace(context.Background(), tt.begin, stmt(sql, 1), tt.err)

			if tt.wantMsg == "" {
				assert.Zero(t, logs.Len())
				return
			}
			require.Equal(t, 1, logs.Len())
			e := logs.All()[0]
			assert.Equal(t, tt.wantMsg, e.Message)
			assert.Equal(t, tt.wantLvl, e.Level)
			assert.Equal(t, "gorm", e.LoggerName)
			assert.Equal(t, sql, e.ContextMap()["sql"])
		})
	}
}

func TestGormLogger_TraceCarriesRequestScope(t *testing.T) {
	l, logs := newObservedGorm(gormlogger.Info)
	ctx := WithAccount(WithRequestID(context.Background(), "req-9"), "acc-3", "Customer")

	l.Trace(ctx, time.Now(), stmt("UPDATE products SET stock = 2", 1), nil)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "acc-3", fields["account_id"])
	assert.EqualValues(t, 1, fields["rows"])
}

func TestGormLogger_Printf(t *testing.T) {
	l, logs := newObservedGorm(gormlogger.Warn)
	ctx := context.Background()

	l.Info(ctx, "ignored %d", 1)
	l.Warn(ctx, "pool exhausted after %d waits", 3)
	l.Error(ctx, "connection reset")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "pool exhausted after 3 waits", logs.All()[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("ERROR"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("other"))
}
