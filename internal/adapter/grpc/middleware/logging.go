package middleware

import (
	"context"
	"time"

	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor logs every unary call with its duration and status.
// Health checks are logged at debug level since orchestrators poll them.
func LoggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		startTime := time.Now()
		spanCtx := trace.SpanFromContext(ctx).SpanContext()

		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(startTime)),
			zap.String("status_code", status.Code(err).String()),
		}
		if spanCtx.IsValid() {
			fields = append(fields,
				zap.String("trace_id", spanCtx.TraceID().String()),
				zap.String("span_id", spanCtx.SpanID().String()),
			)
		}

		switch {
		case err != nil:
			log.Error("gRPC request failed", append(fields, zap.Error(err))...)
		case info.FullMethod == grpc_health_v1.Health_Check_FullMethodName:
			log.Debug("gRPC health check", fields...)
		default:
			log.Info("gRPC request completed", fields...)
		}
		return resp, err
	}
}
