package rest

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type stateKey struct{}

// requestState is filled in by handlers and read back by requestLogger.
type requestState struct {
	errKind string
}

func stateFrom(ctx context.Context) *requestState {
	st, _ := ctx.Value(stateKey{}).(*requestState)
	return st
}

// requestLogger logs every request and feeds the latency and error metrics.
func requestLogger(log *logger.Logger, m *metrics.MetricsManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			st := &requestState{}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			r = r.WithContext(context.WithValue(r.Context(), stateKey{}, st))

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if m != nil {
				m.ObserveRequest(route, st.errKind, elapsed)
			}

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", elapsed),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}
			if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
				fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
			}
			if st.errKind != "" {
				fields = append(fields, zap.String("error_kind", st.errKind))
			}

			switch {
			case status >= http.StatusInternalServerError:
				log.Error("HTTP request failed", fields...)
			case status >= http.StatusBadRequest:
				log.Warn("HTTP request rejected", fields...)
			default:
				log.Info("HTTP request", fields...)
			}
		})
	}
}

// recoverer turns a panic into a 500 with the usual error body.
func recoverer(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("Panic recovered",
						zap.String("path", r.URL.Path),
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()))
					writeErrorKind(w, r, http.StatusInternalServerError, "internal", "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
