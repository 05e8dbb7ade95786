package logger

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ContextLogger wraps a zap logger and enriches entries with values
// carried in the request context.
type ContextLogger struct {
	logger *zap.Logger
}

func NewContextLogger(logger *zap.Logger) *ContextLogger {
	return &ContextLogger{logger: logger}
}

// WithContext returns a logger annotated with tracing and session fields
// found in ctx. Missing fields are skipped.
func (cl *ContextLogger) WithContext(ctx context.Context) *zap.Logger {
	fields := []zap.Field{}

	if traceID, ok := ctx.Value("trace_id").(string); ok && traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}

	if requestID, ok := ctx.Value("request_id").(string); ok && requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}

	if sessionID, ok := ctx.Value("session_id").(string); ok && sessionID != "" {
		fields = append(fields, zap.String("session_id", sessionID))
	}

	return cl.logger.With(fields...)
}

func (cl *ContextLogger) WithFields(fields ...zap.Field) *zap.Logger {
	return cl.logger.With(fields...)
}

func (cl *ContextLogger) WithError(err error) *zap.Logger {
	return cl.logger.With(zap.Error(err))
}

func (cl *ContextLogger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	cl.WithContext(ctx).Info("http request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", duration),
	)
}

func (cl *ContextLogger) LogError(ctx context.Context, msg string, err error, fields ...zap.Field) {
	allFields := append(fields, zap.Error(err))
	cl.WithContext(ctx).Error(msg, allFields...)
}

func (cl *ContextLogger) LogInfo(ctx context.Context, msg string, fields ...zap.Field) {
	cl.WithContext(ctx).Info(msg, fields...)
}

func (cl *ContextLogger) LogDebug(ctx context.Context, msg string, fields ...zap.Field) {
	cl.WithContext(ctx).Debug(msg, fields...)
}

func (cl *ContextLogger) LogWarn(ctx context.Context, msg string, fields ...zap.Field) {
	cl.WithContext(ctx).Warn(msg, fields...)
}
