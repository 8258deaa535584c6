package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ssargent/fwledger/pkg/metrics"
)

// InstrumentHandler instruments an HTTP handler with metrics. route is the
// chi pattern, so label cardinality stays bounded.
func InstrumentHandler(m *metrics.Metrics, method, route string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response writer wrapper to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		m.RecordHTTPRequest(method, route, strconv.Itoa(rw.statusCode), time.Since(start))
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
