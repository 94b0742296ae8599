package common

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

// AuthMiddleware enforces the Bearer token on every protected route and
// injects the verified caller id into the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			WriteError(w, NewError(CodeUnauthenticated, "authorization required"))
			return
		}

		// header = Bearer <token>
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			WriteError(w, NewError(CodeUnauthenticated, "invalid auth header"))
			return
		}

		claims, err := ValidToken(parts[1])
		if err != nil {
			WriteError(w, NewError(CodeUnauthenticated, "invalid or expired token"))
			return
		}

		ctx := ContextWithUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ContextWithUserID(ctx context.Context, userID uint64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the caller id placed by AuthMiddleware.
func UserIDFromContext(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(userIDKey).(uint64)
	return id, ok
}
