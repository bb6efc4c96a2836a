package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shipit-ai/shipit-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(config.StorageConfig{
		URL:        url,
		ServiceKey: "service-key",
		Bucket:     "images",
		Timeout:    2 * time.Second,
	})
}

func TestClient_Upload(t *testing.T) {
	t.Run("writes object with content type", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/storage/v1/object/images/images/owner/1-abc.jpg", r.URL.Path)
			assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
			assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, "jpeg-bytes", string(body))

			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		err := newTestClient(srv.URL).Upload(context.Background(), "images/owner/1-abc.jpg", []byte("jpeg-bytes"), "image/jpeg")
		assert.NoError(t, err)
	})

	t.Run("propagates store rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"bucket not found"}`))
		}))
		defer srv.Close()

		err := newTestClient(srv.URL).Upload(context.Background(), "k", []byte("x"), "image/jpeg")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket not found")
	})
}

func TestClient_PublicURL(t *testing.T) {
	client := newTestClient("https://project.supabase.co")
	url := client.PublicURL("images/owner/1-abc.jpg")
	assert.Equal(t, "https://project.supabase.co/storage/v1/object/public/images/images/owner/1-abc.jpg", url)
}
