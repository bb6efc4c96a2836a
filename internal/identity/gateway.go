package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shipit-ai/shipit-api/internal/domain"
)

// Provider is the slice of the identity provider the gateway depends on.
type Provider interface {
	GetUser(ctx context.Context, accessToken string) (*domain.Identity, error)
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
}

// Gateway authenticates bearer credentials, attempting one silent renewal
// through the refresh token when the access token no longer validates.
type Gateway struct {
	provider     Provider
	allowRefresh bool
}

// NewGateway creates an auth gateway. With allowRefresh disabled the gateway
// never contacts the renewal endpoint, even when a refresh token is supplied.
func NewGateway(provider Provider, allowRefresh bool) *Gateway {
	return &Gateway{provider: provider, allowRefresh: allowRefresh}
}

var tokenParser = jwt.NewParser()

// Authenticate resolves the identity behind the presented credentials.
// When validation only succeeded via renewal, the returned TokenPair holds the
// replacement credentials the caller must relay back; it is nil otherwise.
//
// Failure is one of domain.ErrUnauthenticated or domain.ErrSessionExpired.
// Provider transport errors fail closed as ErrUnauthenticated.
func (g *Gateway) Authenticate(ctx context.Context, accessToken, refreshToken string) (*domain.Identity, *domain.TokenPair, error) {
	if accessToken == "" {
		return nil, nil, fmt.Errorf("%w: no token provided", domain.ErrUnauthenticated)
	}
	if _, _, err := tokenParser.ParseUnverified(accessToken, jwt.MapClaims{}); err != nil {
		return nil, nil, fmt.Errorf("%w: malformed token", domain.ErrUnauthenticated)
	}

	user, err := g.provider.GetUser(ctx, accessToken)
	if err == nil {
		return user, nil, nil
	}

	if !g.allowRefresh || refreshToken == "" {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrUnauthenticated, err)
	}

	sess, renewErr := g.provider.RefreshSession(ctx, refreshToken)
	if renewErr != nil {
		if errors.Is(renewErr, ErrRefreshTokenUsed) {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrSessionExpired, renewErr)
		}
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrUnauthenticated, renewErr)
	}

	pair := &domain.TokenPair{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	}
	return &sess.User, pair, nil
}
