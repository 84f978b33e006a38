package storage

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"
)

// GormLogger routes gorm output through logrus.
type GormLogger struct {
	Logger        logrus.FieldLogger
	LogLevel      logger.LogLevel
	SlowThreshold time.Duration
}

func NewGormLogger(l logrus.FieldLogger, level string, slow time.Duration) *GormLogger {
	if slow <= 0 {
		slow = time.Second
	}
	return &GormLogger{Logger: l, LogLevel: parseGormLevel(level), SlowThreshold: slow}
}

func parseGormLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Info {
		l.Logger.Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Warn {
		l.Logger.Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Error {
		l.Logger.Errorf(msg, data...)
	}
}

func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	entry := l.Logger.WithFields(logrus.Fields{
		"sql":    sql,
		"rows":   rows,
		"timeMs": float64(elapsed.Nanoseconds()) / 1e6,
	})

	switch {
	case err != nil && l.LogLevel >= logger.Error && err != logger.ErrRecordNotFound:
		entry.WithError(err).Error("sql failed")
	case elapsed > l.SlowThreshold && l.LogLevel >= logger.Warn:
		entry.Warn("slow sql")
	case l.LogLevel == logger.Info:
		entry.Debug("sql")
	}
}
