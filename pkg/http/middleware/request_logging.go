package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/snapkeep/pkg/appcontext"
)

// loggingWriter remembers what the handler answered so the access log can
// report it.
type loggingWriter struct {
	http.ResponseWriter

	status  int
	written int
}

func (w *loggingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *loggingWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += n

	return n, err
}

// WithRequestLogging writes one access log line per finished request.
func WithRequestLogging(next http.Handler, logger logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startAt := time.Now()
		lw := loggingWriter{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			logger := appcontext.LoggerFromContext(logger, r.Context())

			logger.WithFields(logrus.Fields{
				"remote_addr": r.RemoteAddr,
				"method":      r.Method,
				"request_uri": r.RequestURI,
				"status":      lw.status,
				"bytes":       lw.written,
				"user_agent":  r.UserAgent(),
				"duration_ms": time.Since(startAt).Nanoseconds() / 1e6,
			}).Info("request")
		}()

		next.ServeHTTP(&lw, r)
	})
}
