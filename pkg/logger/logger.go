// Package logger builds the JSON slog loggers used across the storefront and
// carries request identifiers through context so every log line of a request
// can be tied back to it.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// field is a context key whose name doubles as the log attribute key.
type field string

const (
	correlationID field = "correlation_id"
	userID        field = "user_id"
	checkoutID    field = "checkout_id"
)

// requestFields is the order WithContext emits the fields in.
var requestFields = []field{correlationID, userID, checkoutID}

type loggerKey struct{}

// New returns a logger writing to stdout. See NewWithWriter.
func New(serviceName, level string) *slog.Logger {
	return NewWithWriter(serviceName, level, os.Stdout)
}

// NewWithWriter returns a JSON logger on w with every record tagged
// service=serviceName. Source locations are added at debug level only.
func NewWithWriter(serviceName, level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})
	return slog.New(h).With(slog.String("service", serviceName))
}

// ParseLevel maps LOG_LEVEL values ("debug", "WARN", ...) to a slog level.
// Unknown values fall back to info.
func ParseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Err is the attribute every package uses to log an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

func (f field) get(ctx context.Context) string {
	v, _ := ctx.Value(f).(string)
	return v
}

// WithCorrelationID stores the request's correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationID, id)
}

// CorrelationIDFromContext returns the correlation ID or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return correlationID.get(ctx)
}

// WithUserID stores the authenticated user.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userID, id)
}

func UserIDFromContext(ctx context.Context) string {
	return userID.get(ctx)
}

// WithCheckoutID stores the checkout session a request is driving.
func WithCheckoutID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, checkoutID, id)
}

func CheckoutIDFromContext(ctx context.Context) string {
	return checkoutID.get(ctx)
}

// NewContext attaches l to ctx for FromContext.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger attached by NewContext, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithContext returns l extended with the request identifiers found in ctx
// and, when a span is recording, its trace and span IDs. Empty identifiers
// are left out.
func WithContext(ctx context.Context, l *slog.Logger) *slog.Logger {
	attrs := make([]any, 0, len(requestFields)+2)
	for _, f := range requestFields {
		if v := f.get(ctx); v != "" {
			attrs = append(attrs, slog.String(string(f), v))
		}
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}
