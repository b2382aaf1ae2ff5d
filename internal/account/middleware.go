package account

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/huyhung/ecom-api/internal/httputil"
	"github.com/huyhung/ecom-api/internal/user"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	UserIDContextKey   ContextKey = "user_id"
	UserRoleContextKey ContextKey = "user_role"
)

// Middleware handles authentication and role checks for protected routes
type Middleware struct {
	tokenService TokenService
}

func NewMiddleware(tokenService TokenService) *Middleware {
	return &Middleware{tokenService: tokenService}
}

// RequireAuth validates the auth token from the Authorization header or the
// auth cookie and stores the principal in the request context
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string

		// Priority 1: Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			} else {
				httputil.RespondError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}
		}

		// Priority 2: Cookie (fallback)
		if token == "" {
			cookieToken, err := GetTokenFromCookie(r)
			if err != nil {
				httputil.RespondError(w, "Missing authentication", http.StatusUnauthorized)
				return
			}
			token = cookieToken
		}

		// Verify token
		claims, err := m.tokenService.VerifyToken(token)
		if err != nil {
			if err == ErrExpiredToken {
				httputil.RespondError(w, "Token has expired", http.StatusUnauthorized)
				return
			}
			httputil.RespondError(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		// Parse UUID from claims
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			httputil.RespondError(w, "Invalid user ID in token", http.StatusUnauthorized)
			return
		}

		// Add principal to request context
		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		ctx = context.WithValue(ctx, UserRoleContextKey, claims.Type)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles gates a route on an explicit required-role set, evaluated
// after RequireAuth has populated the principal
func (m *Middleware) RequireRoles(required ...user.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRoleFromContext(r.Context())
			if !ok {
				httputil.RespondError(w, "Missing authentication", http.StatusUnauthorized)
				return
			}

			if !Authorize(role, required) {
				httputil.RespondError(w, "Access denied", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return userID, ok
}

// GetUserRoleFromContext extracts the principal's role from the request context
func GetUserRoleFromContext(ctx context.Context) (user.Role, bool) {
	role, ok := ctx.Value(UserRoleContextKey).(user.Role)
	return role, ok
}
