package middleware

import (
	"net/http"
	"time"

	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Logger logs one line per request with status, size and duration.
func Logger(appLogger *logger.Logger) func(http.Handler) http.Handler {
	log := appLogger.Named("HTTP")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			}
			if sc := trace.SpanFromContext(r.Context()).SpanContext(); sc.IsValid() {
				fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
			}

			switch {
			case ww.Status() >= http.StatusInternalServerError:
				log.Error("HTTP request failed", fields...)
			case r.URL.Path == "/healthz" || r.URL.Path == "/readyz":
				log.Debug("HTTP health probe", fields...)
			default:
				log.Info("HTTP request completed", fields...)
			}
		})
	}
}
