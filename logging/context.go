package logging

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey string

const (
	// ConversionIDKey is the context key for the id of a single re-encode call.
	ConversionIDKey ctxKey = "conversion_id"
	// BatchIDKey is the context key for the id of a batch run.
	BatchIDKey ctxKey = "batch_id"
)

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}

// WithContext creates a child logger with the ids found in ctx.
func WithContext(logger Logger, ctx context.Context) Logger {
	if ctx == nil {
		return logger
	}

	var fields []zap.Field
	if id := GetBatchID(ctx); id != "" {
		fields = append(fields, zap.String(string(BatchIDKey), id))
	}
	if id := GetConversionID(ctx); id != "" {
		fields = append(fields, zap.String(string(ConversionIDKey), id))
	}

	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(key).(string); ok {
		return s
	}
	return ""
}

// GetConversionID extracts the conversion id from context.
func GetConversionID(ctx context.Context) string {
	return stringValue(ctx, ConversionIDKey)
}

// GetBatchID extracts the batch id from context.
func GetBatchID(ctx context.Context) string {
	return stringValue(ctx, BatchIDKey)
}

// SetConversionID adds a conversion id to context.
func SetConversionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ConversionIDKey, id)
}

// SetBatchID adds a batch id to context.
func SetBatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, BatchIDKey, id)
}

// EnsureConversionID returns ctx carrying a conversion id, generating one
// when none is present.
func EnsureConversionID(ctx context.Context) (context.Context, string) {
	if id := GetConversionID(ctx); id != "" {
		return ctx, id
	}
	id := NewID()
	return SetConversionID(ctx, id), id
}

type loggerKey struct{}

// FromContext returns the Logger stored in the context, or the global logger if none.
func FromContext(ctx context.Context) Logger {
	if ctx == nil {
		return Global()
	}
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	return Global()
}

// ToContext stores the Logger in the context.
func ToContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}
