package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ortnersoft/crm-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID ensures every request carries a request id, honouring one the
// caller provided and minting a fresh one otherwise.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, requestID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, requestID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
