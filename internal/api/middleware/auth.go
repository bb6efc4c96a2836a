package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shipit-ai/shipit-api/internal/api/response"
	"github.com/shipit-ai/shipit-api/internal/domain"
	"github.com/shipit-ai/shipit-api/internal/identity"
)

type contextKey string

const identityKey contextKey = "identity"

// Header names for the credential handshake.
const (
	refreshTokenHeader    = "Refresh-Token"
	newAccessTokenHeader  = "New-Access-Token"
	newRefreshTokenHeader = "New-Refresh-Token"
)

// SessionExpiredCode tells the caller a full re-authentication is required.
const SessionExpiredCode = "REFRESH_TOKEN_USED"

// AuthMiddleware authenticates bearer credentials through the AuthGateway.
type AuthMiddleware struct {
	gateway *identity.Gateway
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(gateway *identity.Gateway) *AuthMiddleware {
	return &AuthMiddleware{gateway: gateway}
}

// Authenticate resolves the caller's identity. When the access token was only
// recoverable via silent renewal, the replacement pair is relayed back in the
// New-Access-Token / New-Refresh-Token response headers.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Unauthorized(w, "invalid authorization header format")
			return
		}

		refreshToken := r.Header.Get(refreshTokenHeader)

		user, pair, err := m.gateway.Authenticate(r.Context(), parts[1], refreshToken)
		if err != nil {
			if errors.Is(err, domain.ErrSessionExpired) {
				response.ErrorCode(w, http.StatusUnauthorized, "session expired, please sign in again", SessionExpiredCode)
				return
			}
			response.Unauthorized(w, "invalid or expired token")
			return
		}

		if pair != nil {
			w.Header().Set(newAccessTokenHeader, pair.AccessToken)
			w.Header().Set(newRefreshTokenHeader, pair.RefreshToken)
			log.Info().Stringer("user_id", user.ID).Msg("session silently renewed")
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), user)))
	})
}

// WithIdentity returns a context carrying the authenticated identity. Used by
// the auth middleware and by tests standing in for it.
func WithIdentity(ctx context.Context, user *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, user)
}

// GetIdentity gets the authenticated identity from context
func GetIdentity(ctx context.Context) (*domain.Identity, bool) {
	user, ok := ctx.Value(identityKey).(*domain.Identity)
	return user, ok
}
