package observability

import (
	"context"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
)

// basic global logger, JSON to stdout until Init says otherwise.
var logger atomic.Pointer[zap.SugaredLogger]

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	logger.Store(l.Sugar())
}

// Init replaces the global logger. mode "prod"/"production" logs JSON at
// info level, anything else uses zap's development console config.
func Init(mode string) error {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

// SetLogger swaps the global logger (tests use zap.NewNop or zaptest).
func SetLogger(l *zap.Logger) {
	logger.Store(l.Sugar())
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger().Sync()
}

func Logger() *zap.SugaredLogger {
	return logger.Load()
}

// WithFields returns a logger with additional fields.
func WithFields(kv ...any) *zap.SugaredLogger {
	return Logger().With(kv...)
}

// WithRequestID stores a request_id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// RequestID returns the request_id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	reqID, _ := ctx.Value(ctxKeyRequestID).(string)
	return reqID
}

// LoggerFromContext adds request_id if present.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	reqID := RequestID(ctx)
	if reqID == "" {
		return Logger()
	}
	return Logger().With("request_id", reqID)
}
