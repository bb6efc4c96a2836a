package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shipit-ai/shipit-api/internal/domain"
)

const contentTypeJPEG = "image/jpeg"

// ObjectStore is the slice of the object store the ingest pipeline depends on.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PublicURL(key string) string
}

// Worker ingests a single inbound image: decode, derive a unique key, upload,
// and resolve the public retrieval URL.
type Worker struct {
	store ObjectStore
}

// NewWorker creates an image ingest worker
func NewWorker(store ObjectStore) *Worker {
	return &Worker{store: store}
}

// Ingest processes one base64 data-URL payload and returns the public URL of
// the uploaded object. Owner may be nil for unauthenticated uploads.
func (w *Worker) Ingest(ctx context.Context, payload string, owner *domain.Identity) (string, error) {
	data, err := decodeDataURL(payload)
	if err != nil {
		return "", err
	}

	key := storageKey(owner)
	if err := w.store.Upload(ctx, key, data, contentTypeJPEG); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrStorageUpload, err)
	}

	return w.store.PublicURL(key), nil
}

func decodeDataURL(payload string) ([]byte, error) {
	_, encoded, found := strings.Cut(payload, ",")
	if !found || encoded == "" {
		return nil, fmt.Errorf("%w: missing base64 payload", domain.ErrInvalidImageData)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidImageData, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidImageData)
	}
	return data, nil
}

// storageKey derives a key unique across concurrent and historical uploads:
// owner scope, nanosecond timestamp, random suffix. Unauthenticated uploads
// share the "anon" scope; uniqueness still holds through the other components.
func storageKey(owner *domain.Identity) string {
	scope := "anon"
	if owner != nil {
		scope = owner.ID.String()
	}
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("images/%s/%d-%s.jpg", scope, time.Now().UnixNano(), suffix)
}
