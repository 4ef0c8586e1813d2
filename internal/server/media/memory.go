package media

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryHost keeps uploads in process. Used when no bucket is configured.
type MemoryHost struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
}

func NewMemoryHost(baseURL string) *MemoryHost {
	return &MemoryHost{baseURL: baseURL, objects: make(map[string][]byte)}
}

func (h *MemoryHost) Upload(ctx context.Context, payload string) (string, error) {
	contentType, data, err := DecodePayload(payload)
	if err != nil {
		return "", err
	}
	key := uuid.NewString()

	h.mu.Lock()
	h.objects[key] = data
	h.mu.Unlock()

	return h.baseURL + "/" + key + extensions[contentType], nil
}

func (h *MemoryHost) Delete(ctx context.Context, url string) error {
	h.mu.Lock()
	delete(h.objects, IDFromURL(url))
	h.mu.Unlock()
	return nil
}

// Len reports how many objects are stored.
func (h *MemoryHost) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.objects)
}
