package middleware

import (
	"context"
	"net/http"
	"strings"

	"teamboard/internal/auth"
	"teamboard/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// RequireAuth checks the Authorization header for a valid bearer token and
// stores the resolved user in the request context.
func RequireAuth(authService *auth.Service, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}

		user, err := authService.GetUserFromToken(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin wraps RequireAuth and additionally requires the admin role.
func RequireAdmin(authService *auth.Service, next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(authService, func(w http.ResponseWriter, r *http.Request) {
		user := UserFrom(r.Context())
		if user == nil || user.Role != models.RoleAdmin {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next(w, r)
	})
}

// UserFrom returns the authenticated user stored by RequireAuth, or nil.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// bearerToken extracts the credential from "Authorization: Bearer <token>",
// falling back to the token query parameter for WebSocket clients that cannot
// set headers.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}
