package middleware

import (
	"context"
	"net/http"
	"strings"

	"factorylink/internal/domain"
	"factorylink/internal/repository"
	"factorylink/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenCookieName is the HTTP-only cookie carrying the auth token.
const TokenCookieName = "token"

// AuthMiddleware locates a bearer token in the Authorization header or the
// token cookie, verifies it, loads the user it names, and attaches a minimal
// identity projection to the request context. Every failure is a 401: the
// middleware fails closed.
func AuthMiddleware(users service.UserService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				logger.Debug("Missing auth token")
				RespondWithError(w, http.StatusUnauthorized, "not authorized, no token")
				return
			}

			claims, err := users.ValidateToken(tokenString)
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				RespondWithError(w, http.StatusUnauthorized, "not authorized, token failed")
				return
			}

			// One database read per protected call. A token for a deleted
			// user is only caught here; there is no revocation list.
			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if err == repository.ErrUserNotFound {
					logger.Debug("Token references missing user", zap.Int64("user_id", claims.UserID))
				} else {
					logger.Error("Failed to load user for token", zap.Error(err))
				}
				RespondWithError(w, http.StatusUnauthorized, "not authorized, token failed")
				return
			}

			identity := &domain.Identity{
				ID:      user.ID,
				Name:    user.Name,
				Email:   user.Email,
				IsAdmin: user.IsAdmin,
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)

			logger.Debug("User authenticated",
				zap.Int64("user_id", identity.ID),
				zap.String("email", identity.Email),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken prefers the Authorization header and falls back to the cookie.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	cookie, err := r.Cookie(TokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// GetIdentity extracts the authenticated identity from the request context
func GetIdentity(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*domain.Identity)
	return identity, ok
}
