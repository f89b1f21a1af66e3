package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// Options configures New. The zero Level logs everything from debug up;
// a nil Output writes to stdout.
type Options struct {
	ServiceName string
	Level       zerolog.Level
	Format      string
	WarnStack   bool
	Output      io.Writer
}

// Logger is a zerolog wrapper whose request-scoped fields ride along in the
// context, so handlers and services log with the same request_id.
type Logger struct {
	root      zerolog.Logger
	warnStack bool
}

type fieldsKey struct{}

func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(strings.TrimSpace(opts.Format), FormatConsole) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}
	root := zerolog.New(out).Level(opts.Level).With().
		Timestamp().
		Str("service", opts.ServiceName).
		Logger()
	return &Logger{root: root, warnStack: opts.WarnStack}
}

// ParseLevel falls back to info for empty or unknown input.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) scoped(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if lg, ok := ctx.Value(fieldsKey{}).(*zerolog.Logger); ok {
			return lg
		}
	}
	return &l.root
}

func (l *Logger) with(ctx context.Context, build func(zerolog.Context) zerolog.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	lg := build(l.scoped(ctx).With()).Logger()
	return context.WithValue(ctx, fieldsKey{}, &lg)
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Interface(key, value) })
}

// WithFields adds every entry of fields in key order.
func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Fields(fields) })
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, "request_id", requestID)
}

func (l *Logger) WithChangeID(ctx context.Context, changeID string) context.Context {
	return l.WithField(ctx, "pending_change_id", changeID)
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.scoped(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.scoped(ctx).Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	ev := l.scoped(ctx).Warn()
	if l.warnStack {
		ev = ev.Bytes("stack", stack())
	}
	ev.Msg(msg)
}

// Error always records the stack; err may be nil.
func (l *Logger) Error(ctx context.Context, msg string, err error) {
	l.scoped(ctx).Error().Err(err).Bytes("stack", stack()).Msg(msg)
}

func stack() []byte {
	return []byte(strings.TrimSpace(string(debug.Stack())))
}
