// Package log provides scoped, context-aware logging built on zerolog.
package log

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const scopeFieldName = "s"

// Logger wraps a zerolog.Logger with scope and typed-field helpers.
type Logger struct {
	zl zerolog.Logger
}

// Field adds a typed field to a logger context.
type Field func(zerolog.Context) zerolog.Context

// Index attaches an index name field.
func Index(name string) Field {
	return func(c zerolog.Context) zerolog.Context {
		return c.Str("index", name)
	}
}

// Count attaches a document count field.
func Count(n int64) Field {
	return func(c zerolog.Context) zerolog.Context {
		return c.Int64("count", n)
	}
}

// Elapsed attaches an elapsed duration field.
func Elapsed(d time.Duration) Field {
	return func(c zerolog.Context) zerolog.Context {
		return c.Dur("elapsed", d)
	}
}

// Pair attaches the source and target index names of a replication pair.
func Pair(source, target string) Field {
	return func(c zerolog.Context) zerolog.Context {
		return c.Str("source", source).Str("target", target)
	}
}

// InitGlobals configures the global logger and returns it. It must be called once
// at startup before any logging.
func InitGlobals(level zerolog.Level, json, noColor bool) Logger {
	zerolog.SetGlobalLevel(level)
	zerolog.DurationFieldUnit = time.Millisecond

	if json {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		zerolog.DefaultContextLogger = &l

		return Logger{zl: l}
	}

	cw := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		NoColor:    noColor,
		TimeFormat: time.DateTime,
	}

	l := zerolog.New(cw).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &l

	return Logger{zl: l}
}

// New returns a logger for the given scope based on the global logger.
func New(scope string) Logger {
	l := zerolog.DefaultContextLogger
	if l == nil {
		nop := zerolog.Nop()
		l = &nop
	}

	return Logger{zl: l.With().Str(scopeFieldName, scope).Logger()}
}

// Ctx returns the logger stored in the context, or the global logger.
func Ctx(ctx context.Context) Logger {
	return Logger{zl: *zerolog.Ctx(ctx)}
}

// WithContext returns a copy of ctx carrying the logger.
func (l Logger) WithContext(ctx context.Context) context.Context {
	return l.zl.WithContext(ctx)
}

// With returns a logger with the given fields attached.
func (l Logger) With(fields ...Field) Logger {
	c := l.zl.With()
	for _, f := range fields {
		c = f(c)
	}

	return Logger{zl: c.Logger()}
}

func (l Logger) Trace(msg string) {
	l.zl.Trace().Msg(msg)
}

func (l Logger) Tracef(format string, vals ...any) {
	l.zl.Trace().Msgf(format, vals...)
}

func (l Logger) Debug(msg string) {
	l.zl.Debug().Msg(msg)
}

func (l Logger) Debugf(format string, vals ...any) {
	l.zl.Debug().Msgf(format, vals...)
}

func (l Logger) Info(msg string) {
	l.zl.Info().Msg(msg)
}

func (l Logger) Infof(format string, vals ...any) {
	l.zl.Info().Msgf(format, vals...)
}

func (l Logger) Warn(msg string) {
	l.zl.Warn().Msg(msg)
}

func (l Logger) Warnf(format string, vals ...any) {
	l.zl.Warn().Msgf(format, vals...)
}

func (l Logger) Error(err error, msg string) {
	l.zl.Error().Err(err).Msg(msg)
}

func (l Logger) Errorf(err error, format string, vals ...any) {
	l.zl.Error().Err(err).Msgf(format, vals...)
}
