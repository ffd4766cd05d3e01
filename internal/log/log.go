package log

import (
	"context"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

var base = logrus.New()

// Init sets the global log level and switches to structured JSON output
// when asked for (plain text otherwise).
func Init(level string, json bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)
	if json {
		base.SetFormatter(&logrus.JSONFormatter{})
	}
}

// GetLogger returns the request-scoped logger carried in ctx, or a plain
// entry on the global logger when none was attached.
func GetLogger(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(base)
}

// WithLogger attaches entry to ctx so downstream calls share its fields.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// WithFields is shorthand for attaching extra fields to the logger in ctx.
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return WithLogger(ctx, GetLogger(ctx).WithFields(fields))
}
