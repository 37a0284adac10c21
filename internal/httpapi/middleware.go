package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/domain"
	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/repository"
	"github.com/google/uuid"
)

type ctxKey string

const (
	userKey      ctxKey = "user"
	requestIDKey ctxKey = "request_id"
)

// Authenticate resolves the calling user's document from the users collection.
// The identity itself comes from the X-User-Email header set by the auth layer
// in front of this service (JWT validation lives there, not here).
func Authenticate(users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := r.Header.Get("X-User-Email")
			if email == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
				return
			}

			user, err := users.FindByEmail(r.Context(), email)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					respondError(w, http.StatusUnauthorized, "unauthorized", "unknown user")
					return
				}
				respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) *domain.User {
	if user, ok := ctx.Value(userKey).(*domain.User); ok {
		return user
	}
	return nil
}
