package metrics

import (
	"net/http"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricPath collapses the request path to one of the served routes so the
// path label on the request counters stays bounded.
func metricPath(p string) string {
	switch p {
	case "/api/performance_history", "/api/trade_log", "/api/portfolio",
		"/api/metrics", "/api/distribution", "/api/status", "/api/health",
		"/metrics":
		return p
	}
	return "other"
}

// HTTPMiddleware returns middleware that records HTTP metrics.
func HTTPMiddleware(reg *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reg.InFlightInc()
			defer reg.InFlightDec()

			start := time.Now()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			reg.RecordRequest(r.Method, metricPath(r.URL.Path), rw.statusCode, duration)
		})
	}
}
