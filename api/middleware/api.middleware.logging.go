// FilePath: api/middleware/api.middleware.logging.go
package middleware

import (
	"net/http"
	"time"

	nuts "github.com/vaudience/go-nuts"
)

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogging logs one line per request with method, path, status and
// duration.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		nuts.L.Infof("[HTTP] %s %s -> %d (%v)", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
