package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/atlas-backend/internal/platform/ctxutil"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

// gormZapLogger routes gorm's query log through the application logger.
type gormZapLogger struct {
	log           *logger.Logger
	level         gormLogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(log *logger.Logger, slow time.Duration) gormLogger.Interface {
	if log == nil {
		return gormLogger.Discard
	}
	if slow <= 0 {
		slow = time.Second
	}
	return &gormZapLogger{log: log.With("component", "gorm"), level: gormLogger.Warn, slowThreshold: slow}
}

func (l *gormZapLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	out := *l
	out.level = level
	return &out
}

func (l *gormZapLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormLogger.Info {
		l.log.Info(msg, append(ctxutil.LogFields(ctx), "args", args)...)
	}
}

func (l *gormZapLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormLogger.Warn {
		l.log.Warn(msg, append(ctxutil.LogFields(ctx), "args", args)...)
	}
}

func (l *gormZapLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormLogger.Error {
		l.log.Error(msg, append(ctxutil.LogFields(ctx), "args", args)...)
	}
}

func (l *gormZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormLogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		fields := append(ctxutil.LogFields(ctx), "sql", sql, "rows", rows, "duration_ms", elapsed.Milliseconds(), "error", err)
		l.log.Error("gorm query failed", fields...)
	case elapsed > l.slowThreshold && l.level >= gormLogger.Warn:
		sql, rows := fc()
		fields := append(ctxutil.LogFields(ctx), "sql", sql, "rows", rows, "duration_ms", elapsed.Milliseconds())
		l.log.Warn("gorm slow query", fields...)
	case l.level >= gormLogger.Info:
		sql, rows := fc()
		l.log.Debug("gorm query", append(ctxutil.LogFields(ctx), "sql", sql, "rows", rows, "duration_ms", elapsed.Milliseconds())...)
	}
}
