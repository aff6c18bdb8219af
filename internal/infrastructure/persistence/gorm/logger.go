package gorm

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// zapWriter adapts a zap logger to the gorm logger writer
type zapWriter struct {
	logger *zap.Logger
}

// Printf implements gormlogger.Writer
func (w zapWriter) Printf(format string, args ...interface{}) {
	w.logger.Info(fmt.Sprintf(format, args...))
}

// NewLogger creates a GORM logger that writes through zap. The level maps the
// application log level to how chatty GORM is.
func NewLogger(logger *zap.Logger, level string, slowThreshold time.Duration) gormlogger.Interface {
	logLevel := gormlogger.Silent
	switch level {
	case "debug":
		logLevel = gormlogger.Info
	case "info", "warn":
		logLevel = gormlogger.Warn
	case "error":
		logLevel = gormlogger.Error
	}

	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}

	return gormlogger.New(
		zapWriter{logger: logger.Named("gorm")},
		gormlogger.Config{
			SlowThreshold:             slowThreshold,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
