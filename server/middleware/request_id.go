// Package middleware provides various middleware functions for HTTP handlers.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// maxRequestIDLen bounds caller-supplied IDs that are echoed back.
const maxRequestIDLen = 128

// RequestID middleware adds a unique request ID to the context
// and sets it in the response header. A caller-supplied X-Request-ID is
// reused so a host can correlate its own logs with ours.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.New().String()
		}
		r.Header.Set(RequestIDHeader, requestID)

		// Set the request ID in the response header for tracking.
		w.Header().Set(RequestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
