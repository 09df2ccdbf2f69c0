// Package obslog provides the structured logger used throughout the
// simulation engine and its CLI.
package obslog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level selects a minimum severity to emit.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects how log lines are rendered.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config configures a Logger.
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
}

// Logger wraps a zerolog.Logger with the field-pair convenience API used
// across this codebase.
type Logger struct {
	logger zerolog.Logger
}

// New creates a Logger from cfg.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	var output io.Writer = cfg.Output
	if cfg.Format == FormatText {
		output = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		}
	}

	zlog := zerolog.New(output).With().Timestamp().Logger()
	zlog = zlog.Level(levelOf(cfg.Level))

	return &Logger{logger: zlog}
}

func levelOf(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug-level message with key/value field pairs.
func (l *Logger) Debug(msg string, fields ...any) {
	ev := l.logger.Debug()
	l.addFields(ev, fields...)
	ev.Msg(msg)
}

// Info logs an info-level message with key/value field pairs.
func (l *Logger) Info(msg string, fields ...any) {
	ev := l.logger.Info()
	l.addFields(ev, fields...)
	ev.Msg(msg)
}

// Warn logs a warn-level message with key/value field pairs.
func (l *Logger) Warn(msg string, fields ...any) {
	ev := l.logger.Warn()
	l.addFields(ev, fields...)
	ev.Msg(msg)
}

// Error logs an error-level message with key/value field pairs.
func (l *Logger) Error(msg string, fields ...any) {
	ev := l.logger.Error()
	l.addFields(ev, fields...)
	ev.Msg(msg)
}

// WithField returns a child Logger with an additional field attached to
// every subsequent line.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

// WithFields returns a child Logger with several additional fields
// attached to every subsequent line.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	ctx := l.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{logger: ctx.Logger()}
}

func (l *Logger) addFields(ev *zerolog.Event, fields ...any) {
	if len(fields)%2 != 0 {
		ev.Str("error", "odd number of log fields")
		return
	}
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			ev.Str("error", fmt.Sprintf("field key at index %d is not a string", i))
			continue
		}
		ev.Interface(key, fields[i+1])
	}
}

// InitGlobal points the package-level convenience functions below, and
// zerolog's own global logger, at cfg.
func InitGlobal(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	var output io.Writer = cfg.Output
	if cfg.Format == FormatText {
		output = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(levelOf(cfg.Level))
}

// Info logs an info-level message using the global logger.
func Info(msg string) { log.Info().Msg(msg) }

// Warn logs a warn-level message using the global logger.
func Warn(msg string) { log.Warn().Msg(msg) }

// Error logs an error-level message using the global logger.
func Error(msg string) { log.Error().Msg(msg) }
