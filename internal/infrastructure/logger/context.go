package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	shopIDKey    contextKey = "shop_id"
)

// WithContext stores a logger in the context
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from the context, falling back to the
// global no-op logger when none is stored
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores a request ID in the context and returns a logger
// enriched with it
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	enriched := logger.With(zap.String("request_id", requestID))
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return WithContext(ctx, enriched), enriched
}

// WithShopID stores a shop ID in the context and returns a logger
// enriched with it
func WithShopID(ctx context.Context, logger *zap.Logger, shopID int64) (context.Context, *zap.Logger) {
	enriched := logger.With(zap.Int64("shop_id", shopID))
	ctx = context.WithValue(ctx, shopIDKey, shopID)
	return WithContext(ctx, enriched), enriched
}

// GetRequestID extracts the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetShopID extracts the shop ID from the context, zero when absent
func GetShopID(ctx context.Context) int64 {
	if id, ok := ctx.Value(shopIDKey).(int64); ok {
		return id
	}
	return 0
}
