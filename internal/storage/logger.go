package storage

import (
	"context"
	"time"

	"gorm.io/gorm/logger"

	"urlsnap/internal/ctxkeys"
	ilog "urlsnap/internal/logger"
)

// slowThreshold 超过该耗时的 SQL 记为慢查询
const slowThreshold = time.Second

// GormLogger 将 GORM 日志桥接到项目 Logger
type GormLogger struct {
	log      ilog.Logger
	LogLevel logger.LogLevel
}

// NewGormLogger 创建新的 GormLogger 实例
func NewGormLogger(l ilog.Logger) *GormLogger {
	return &GormLogger{log: l, LogLevel: logger.Warn}
}

// LogMode 设置日志级别
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

// Info 打印info级别日志
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Info {
		l.log.Info(msg, append(traceField(ctx), data...)...)
	}
}

// Warn 打印warn级别日志
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Warn {
		l.log.Warn(msg, append(traceField(ctx), data...)...)
	}
}

// Error 打印error级别日志
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Error {
		l.log.Error(msg, append(traceField(ctx), data...)...)
	}
}

// Trace 打印SQL日志
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := append(traceField(ctx),
		"sql", sql,
		"rows", rows,
		"timeMs", float64(elapsed.Nanoseconds())/1e6,
	)

	switch {
	case err != nil && l.LogLevel >= logger.Error:
		l.log.Err(err, "SQL执行错误", fields...)
	case elapsed > slowThreshold && l.LogLevel >= logger.Warn:
		l.log.Warn("慢SQL查询", fields...)
	case l.LogLevel == logger.Info:
		l.log.Debug("SQL执行", fields...)
	}
}

func traceField(ctx context.Context) []any {
	return []any{"traceId", ctx.Value(ctxkeys.TraceIDKey{})}
}
