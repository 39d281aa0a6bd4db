package sqlite

import (
	"context"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bryanwahyu/analysis-gateway/internal/logger"
)

// Open opens the sqlite file at path and migrates the trigger table.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: newGormLogger(logger.Log),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer at a time
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&triggerRow{}); err != nil {
		return nil, err
	}
	return db, nil
}

// gormLogger forwards gorm messages to logrus.
type gormLogger struct {
	log   *logrus.Logger
	level gormlogger.LogLevel
}

func newGormLogger(l *logrus.Logger) *gormLogger {
	return &gormLogger{log: l, level: gormlogger.Warn}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.log.Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.log.Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	entry := l.log.WithFields(logrus.Fields{
		"sql":     sql,
		"rows":    rows,
		"time_ms": float64(elapsed.Nanoseconds()) / 1e6,
	})
	switch {
	case err != nil && err != gorm.ErrRecordNotFound && l.level >= gormlogger.Error:
		entry.WithError(err).Error("sql error")
	case elapsed > time.Second && l.level >= gormlogger.Warn:
		entry.Warn("slow sql")
	case l.level == gormlogger.Info:
		entry.Debug("sql")
	}
}
