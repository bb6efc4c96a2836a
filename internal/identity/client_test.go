package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shipit-ai/shipit-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(config.AuthConfig{
		ProviderURL: url,
		APIKey:      "anon-key",
		Timeout:     2 * time.Second,
	})
}

func TestClient_GetUser(t *testing.T) {
	userID := uuid.New()

	t.Run("valid token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/user", r.URL.Path)
			assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
			assert.Equal(t, "anon-key", r.Header.Get("apikey"))
			json.NewEncoder(w).Encode(map[string]string{
				"id":    userID.String(),
				"email": "user@example.com",
				"role":  "authenticated",
			})
		}))
		defer srv.Close()

		user, err := newTestClient(srv.URL).GetUser(context.Background(), "access-1")
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "user@example.com", user.Email)
		assert.Equal(t, "authenticated", user.Role)
	})

	t.Run("rejected token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"msg": "invalid JWT"})
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).GetUser(context.Background(), "access-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JWT")
	})
}

func TestClient_RefreshSession(t *testing.T) {
	userID := uuid.New()

	t.Run("renewal succeeds with new pair", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/token", r.URL.Path)
			assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "refresh-1", body["refresh_token"])

			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "access-2",
				"refresh_token": "refresh-2",
				"user": map[string]string{
					"id":    userID.String(),
					"email": "user@example.com",
					"role":  "authenticated",
				},
			})
		}))
		defer srv.Close()

		sess, err := newTestClient(srv.URL).RefreshSession(context.Background(), "refresh-1")
		require.NoError(t, err)
		assert.Equal(t, "access-2", sess.AccessToken)
		assert.Equal(t, "refresh-2", sess.RefreshToken)
		assert.Equal(t, userID, sess.User.ID)
	})

	t.Run("consumed refresh token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"error_code": "refresh_token_already_used",
				"msg":        "Invalid Refresh Token: Already Used",
			})
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).RefreshSession(context.Background(), "refresh-1")
		assert.ErrorIs(t, err, ErrRefreshTokenUsed)
	})

	t.Run("other provider failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).RefreshSession(context.Background(), "refresh-1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRefreshTokenUsed)
	})
}
