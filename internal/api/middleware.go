// internal/api/middleware.go
package api

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/sarcascoder/Netflix-clone/internal/contract"
	"github.com/sarcascoder/Netflix-clone/internal/logging"
	"github.com/sarcascoder/Netflix-clone/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// RequestID reuses an upstream X-Request-ID or generates one, and puts it in the
// response header and the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CORS allows browser clients on other origins.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", requestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Observe records access logs and Prometheus request metrics, and turns handler panics
// into a StoreFailure response.
func Observe(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			defer func() {
				if p := recover(); p != nil {
					logger.ErrorContext(r.Context(), "Handler panic recovered",
						slog.Any("panic", p), slog.String("stack", string(debug.Stack())))
					if !rec.wroteHeader {
						writeErrorBody(rec, contract.KindStoreFailure.Status(), contract.ErrorBody{Message: "Internal server error"})
					}
				}

				route := r.URL.Path
				if cur := mux.CurrentRoute(r); cur != nil {
					if tmpl, err := cur.GetPathTemplate(); err == nil {
						route = tmpl
					}
				}
				duration := time.Since(start)
				metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(rec.statusCode), duration)
				logger.InfoContext(r.Context(), "HTTP request served",
					slog.String("method", r.Method),
					slog.String("route", route),
					slog.Int("status", rec.statusCode),
					slog.Duration("duration", duration))
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
