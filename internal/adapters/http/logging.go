package http

import (
	"context"

	"go.uber.org/zap"
)

func httpLogger() *zap.Logger {
	return zap.L().With(
		zap.String("module", "http"),
		zap.String("layer", "adapter"),
	)
}

func logHTTPOperationError(ctx context.Context, operation string, statusCode int, code, message string, err error) {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("outcome", "failure"),
		zap.Int("status_code", statusCode),
		zap.String("error_code", code),
		zap.String("message", message),
		zap.String("request_id", requestIDFromContext(ctx)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if statusCode >= 500 {
		httpLogger().Error("http operation failed", fields...)
		return
	}
	httpLogger().Warn("http operation failed", fields...)
}
