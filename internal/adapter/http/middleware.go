package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/nestegg-backend/internal/identity"
)

// TokenVerifier resolves a bearer token to a user id
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the authenticated user id in the request context
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing authorization header"})
				return
			}

			userID, err := verifier.Verify(header)
			if err != nil {
				message := "invalid token"
				if errors.Is(err, identity.ErrMissingToken) {
					message = "missing authorization header"
				}
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: message})
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithUserID(r.Context(), userID)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs method, path, status and duration of every request
func LoggingMiddleware(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			entry := logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			})
			switch {
			case rec.status >= http.StatusInternalServerError:
				entry.Error("http request failed")
			case rec.status >= http.StatusBadRequest:
				entry.Info("http request rejected")
			default:
				entry.Debug("http request")
			}
		})
	}
}
