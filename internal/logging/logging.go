// Package logging wraps zerolog for leveled, structured logging used
// across the HTTP surface and the job runner.
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// Logger wraps a zerolog logger.
type Logger struct {
	logger *zerolog.Logger
}

// New creates a new Logger. format is either "console" (human-readable)
// or anything else for structured JSON.
func New(level, format string) *Logger {
	logLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logger zerolog.Logger
	if format == "console" || format == "pretty" {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Caller().Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()
	}

	return &Logger{logger: &logger}
}

func (l *Logger) Info() *zerolog.Event  { return l.logger.Info() }
func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Logger) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }

// WithField returns a new Logger with an additional structured field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	newLogger := l.logger.With().Interface(key, value).Logger()
	return &Logger{logger: &newLogger}
}

// WithUpload returns a new Logger tagged with the upload_id field, the
// correlation key threaded through every component that touches an
// upload session.
func (l *Logger) WithUpload(uploadID string) *Logger {
	newLogger := l.logger.With().Str("upload_id", uploadID).Logger()
	return &Logger{logger: &newLogger}
}

// GetZerolog returns the underlying zerolog logger.
func (l *Logger) GetZerolog() *zerolog.Logger { return l.logger }

// WithContext attaches l to ctx so it can be retrieved with FromContext.
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the Logger attached by WithContext, or a new
// JSON logger writing to stdout at info level if none was attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return New("info", "json")
}
