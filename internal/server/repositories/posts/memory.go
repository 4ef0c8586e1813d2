package posts

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
	posts map[string]*models.Post
	now   func() time.Time
	last  time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{posts: make(map[string]*models.Post), now: time.Now}
}

func clone(p *models.Post) *models.Post {
	c := *p
	c.Likes = slices.Clone(p.Likes)
	c.Comments = slices.Clone(p.Comments)
	return &c
}

func (r *MemoryRepository) Create(_ context.Context, post *models.Post) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := clone(post)
	p.ID = uuid.NewString()
	p.Likes, p.Comments = []string{}, []models.Comment{}
	// creation times are strictly increasing so newest-first is a total order
	p.CreatedAt = r.now().UTC()
	if !p.CreatedAt.After(r.last) {
		p.CreatedAt = r.last.Add(time.Nanosecond)
	}
	r.last = p.CreatedAt
	p.UpdatedAt = p.CreatedAt

	r.posts[p.ID] = p
	return clone(p), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(p), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *MemoryRepository) mutate(postID string, fn func(p *models.Post)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return common.ErrorNotFound
	}
	fn(p)
	p.UpdatedAt = r.now().UTC()
	return nil
}

func (r *MemoryRepository) AddLike(_ context.Context, postID, userID string) error {
	return r.mutate(postID, func(p *models.Post) {
		if !slices.Contains(p.Likes, userID) {
			p.Likes = append(p.Likes, userID)
		}
	})
}

func (r *MemoryRepository) RemoveLike(_ context.Context, postID, userID string) error {
	return r.mutate(postID, func(p *models.Post) {
		p.Likes = slices.DeleteFunc(p.Likes, func(id string) bool { return id == userID })
	})
}

func (r *MemoryRepository) AppendComment(_ context.Context, postID string, comment models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	return r.mutate(postID, func(p *models.Post) {
		p.Comments = append(p.Comments, comment)
	})
}

func (r *MemoryRepository) filter(keep func(*models.Post) bool) []*models.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Post
	for _, p := range r.posts {
		if keep(p) {
			out = append(out, clone(p))
		}
	}
	slices.SortFunc(out, func(a, b *models.Post) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return out
}

func (r *MemoryRepository) ListAll(context.Context) ([]*models.Post, error) {
	return r.filter(func(*models.Post) bool { return true }), nil
}

func (r *MemoryRepository) ListByAuthors(_ context.Context, authorIDs []string) ([]*models.Post, error) {
	return r.filter(func(p *models.Post) bool { return slices.Contains(authorIDs, p.Author) }), nil
}

func (r *MemoryRepository) ListByIDs(_ context.Context, ids []string) ([]*models.Post, error) {
	return r.filter(func(p *models.Post) bool { return slices.Contains(ids, p.ID) }), nil
}
