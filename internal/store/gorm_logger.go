package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/catalogforge/imgingest/internal/logging"
)

// zlogGormLogger adapts *logging.Logger to gorm's logger.Interface.
type zlogGormLogger struct {
	logger               *logging.Logger
	slowThreshold        time.Duration
	ignoreRecordNotFound bool
	logLevel             gormlogger.LogLevel
}

func newGormLogger(l *logging.Logger, level gormlogger.LogLevel) *zlogGormLogger {
	return &zlogGormLogger{
		logger:               l,
		slowThreshold:        200 * time.Millisecond,
		ignoreRecordNotFound: true,
		logLevel:             level,
	}
}

func (l *zlogGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

func (l *zlogGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Info {
		l.logger.Info().Msgf(msg, data...)
	}
}

func (l *zlogGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Warn {
		l.logger.Warn().Msgf(msg, data...)
	}
}

func (l *zlogGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Error {
		l.logger.Error().Msgf(msg, data...)
	}
}

func (l *zlogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	sql = cleanSQL(sql)

	switch {
	case err != nil && l.logLevel >= gormlogger.Error && (!errors.Is(err, gorm.ErrRecordNotFound) || !l.ignoreRecordNotFound):
		l.logger.Error().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("sql error")
	case elapsed > l.slowThreshold && l.slowThreshold != 0 && l.logLevel >= gormlogger.Warn:
		l.logger.Warn().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("slow sql")
	case l.logLevel == gormlogger.Info:
		l.logger.Info().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("sql query")
	}
}

var gormLoggerWhitespace = regexp.MustCompile(`\s+`)

func cleanSQL(sql string) string {
	clean := strings.ReplaceAll(sql, "\"", "")
	clean = strings.ReplaceAll(clean, "\n", " ")
	clean = strings.ReplaceAll(clean, "\t", " ")
	clean = gormLoggerWhitespace.ReplaceAllString(clean, " ")
	return strings.TrimSpace(clean)
}
