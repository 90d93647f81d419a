package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/yurykabanov/snapkeep/pkg/appcontext"
)

const requestIdHeader = "X-Request-Id"

// WithRequestId propagates the caller's request id, or mints one, into the
// request context and the response.
func WithRequestId(next http.Handler, nextRequestId func() string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get(requestIdHeader)
		if requestId == "" {
			requestId = nextRequestId()
		}

		ctx := appcontext.WithRequestId(r.Context(), requestId)

		w.Header().Set(requestIdHeader, requestId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func DefaultRequestIdProvider() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}

	return hex.EncodeToString(buf)
}
