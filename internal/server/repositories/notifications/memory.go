package notifications

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*models.Notification
	now   func() time.Time
	last  time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]*models.Notification), now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *n
	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.now().UTC()
	}
	if !c.CreatedAt.After(r.last) {
		c.CreatedAt = r.last.Add(time.Nanosecond)
	}
	r.last = c.CreatedAt

	r.items[c.ID] = &c
	out := c
	return &out, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *n
	return &c, nil
}

func (r *MemoryRepository) ListByRecipient(_ context.Context, recipientID string) ([]*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Notification
	for _, n := range r.items {
		if n.To == recipientID {
			c := *n
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *models.Notification) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return out, nil
}

func (r *MemoryRepository) MarkRead(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if n, ok := r.items[id]; ok {
			n.Read = true
		}
	}
	return nil
}

func (r *MemoryRepository) CountUnread(_ context.Context, recipientID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, n := range r.items {
		if n.To == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) DeleteByRecipient(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for id, n := range r.items {
		if n.To == recipientID {
			delete(r.items, id)
			count++
		}
	}
	return count, nil
}
