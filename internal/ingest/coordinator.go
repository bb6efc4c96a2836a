package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/shipit-ai/shipit-api/internal/domain"
)

// MaxImages is the most images a single submission may attach.
const MaxImages = 3

// Coordinator fans one Worker out over all attached images concurrently and
// fans in either the full ordered URL list or the first failure by input index.
type Coordinator struct {
	worker *Worker
}

// NewCoordinator creates an image ingest coordinator
func NewCoordinator(store ObjectStore) *Coordinator {
	return &Coordinator{worker: NewWorker(store)}
}

// IngestAll uploads every payload concurrently. Result index i always
// corresponds to payload index i regardless of completion order. All in-flight
// uploads are awaited even when one fails; the failure with the lowest input
// index wins. Already-uploaded objects are not deleted on partial failure.
func (c *Coordinator) IngestAll(ctx context.Context, payloads []string, owner *domain.Identity) ([]string, error) {
	if len(payloads) > MaxImages {
		return nil, fmt.Errorf("%w: got %d, limit is %d", domain.ErrTooManyImages, len(payloads), MaxImages)
	}
	if len(payloads) == 0 {
		return []string{}, nil
	}

	urls := make([]string, len(payloads))
	errs := make([]error, len(payloads))

	var wg sync.WaitGroup
	for i, payload := range payloads {
		wg.Add(1)
		go func(i int, payload string) {
			defer wg.Done()
			urls[i], errs[i] = c.worker.Ingest(ctx, payload, owner)
		}(i, payload)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
	}
	return urls, nil
}
