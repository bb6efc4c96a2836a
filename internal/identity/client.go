package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shipit-ai/shipit-api/internal/config"
	"github.com/shipit-ai/shipit-api/internal/domain"
)

// ErrRefreshTokenUsed signals that the presented refresh token was already
// consumed by an earlier renewal. The session cannot be recovered.
var ErrRefreshTokenUsed = errors.New("refresh token already used")

// Session is the credential set the provider returns from a renewal.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         domain.Identity
}

// Client talks to the external identity provider over its REST API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates an identity provider client
func NewClient(cfg config.AuthConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.ProviderURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type sessionResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

type providerError struct {
	Code             string `json:"error_code"`
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e providerError) message() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Error != "":
		return e.Error
	}
	return "unknown provider error"
}

// GetUser validates an access token and resolves the identity behind it.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var provErr providerError
		_ = json.NewDecoder(resp.Body).Decode(&provErr)
		return nil, fmt.Errorf("provider rejected token (%d): %s", resp.StatusCode, provErr.message())
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return toIdentity(user)
}

// RefreshSession exchanges a refresh token for a new credential pair.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/auth/v1/token?grant_type=refresh_token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var provErr providerError
		_ = json.NewDecoder(resp.Body).Decode(&provErr)
		if provErr.Code == "refresh_token_already_used" {
			return nil, ErrRefreshTokenUsed
		}
		return nil, fmt.Errorf("renewal rejected (%d): %s", resp.StatusCode, provErr.message())
	}

	var sess sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		return nil, errors.New("provider returned incomplete session")
	}

	user, err := toIdentity(sess.User)
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		User:         *user,
	}, nil
}

func toIdentity(user userResponse) (*domain.Identity, error) {
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID from provider: %w", err)
	}
	return &domain.Identity{
		ID:    id,
		Email: user.Email,
		Role:  user.Role,
	}, nil
}
