package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the structured logger.
type Options struct {
	ServiceName string
	Level       string
	Format      string
	Output      io.Writer
}

// Logger wraps zerolog and carries per-request fields through context.
type Logger struct {
	base *zerolog.Logger
}

type ctxKey struct{}

// New builds a logger writing JSON (or console output when Format is "console").
func New(opts Options) *Logger {
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	if strings.EqualFold(opts.Format, "console") {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	l := zerolog.New(output).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Logger().
		Level(ParseLevel(opts.Level))

	return &Logger{base: &l}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	l := zerolog.Nop()
	return &Logger{base: &l}
}

// ParseLevel falls back to info for empty or unknown values.
func ParseLevel(value string) zerolog.Level {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(v); err == nil {
		return lvl
	}
	return zerolog.InfoLevel
}

func (l *Logger) from(ctx context.Context) *zerolog.Logger {
	if l == nil {
		nop := zerolog.Nop()
		return &nop
	}
	if ctx != nil {
		if entry, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
			return entry
		}
	}
	return l.base
}

// WithFields returns a context whose log lines carry the given fields.
func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	builder := l.from(ctx).With()
	for k, v := range fields {
		builder = builder.Interface(k, v)
	}
	entry := builder.Logger()
	return context.WithValue(ctx, ctxKey{}, &entry)
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithFields(ctx, map[string]any{"request_id": requestID})
}

func (l *Logger) WithUserID(ctx context.Context, userID string) context.Context {
	return l.WithFields(ctx, map[string]any{"user_id": userID})
}

// Zerolog exposes the underlying logger for integrations (echo request logging).
func (l *Logger) Zerolog(ctx context.Context) *zerolog.Logger {
	return l.from(ctx)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...map[string]any) {
	emit(l.from(ctx).Debug(), msg, fields)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...map[string]any) {
	emit(l.from(ctx).Info(), msg, fields)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...map[string]any) {
	emit(l.from(ctx).Warn(), msg, fields)
}

func (l *Logger) Error(ctx context.Context, msg string, err error, fields ...map[string]any) {
	event := l.from(ctx).Error()
	if err != nil {
		event = event.Err(err)
	}
	emit(event, msg, fields)
}

func emit(event *zerolog.Event, msg string, fields []map[string]any) {
	for _, set := range fields {
		for k, v := range set {
			event = event.Interface(k, v)
		}
	}
	event.Msg(msg)
}
