package users

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory. Every method takes the
// lock for its whole duration, so each call is atomic.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*models.User), now: time.Now}
}

func clone(u *models.User) *models.User {
	c := *u
	c.Followers = slices.Clone(u.Followers)
	c.Following = slices.Clone(u.Following)
	c.LikedPosts = slices.Clone(u.LikedPosts)
	return &c
}

func (r *MemoryRepository) conflict(u *models.User) bool {
	for _, other := range r.users {
		if other.ID != u.ID && (other.Username == u.Username || other.Email == u.Email) {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := clone(user)
	u.ID = uuid.NewString()
	if r.conflict(u) {
		return nil, common.ErrorAlreadyExists
	}
	u.Followers, u.Following, u.LikedPosts = []string{}, []string{}, []string{}
	u.CreatedAt = r.now().UTC()
	u.UpdatedAt = u.CreatedAt

	r.users[u.ID] = u
	return clone(u), nil
}

func (r *MemoryRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *MemoryRepository) GetByIDs(_ context.Context, ids []string) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, clone(u))
		}
	}
	return out, nil
}

func (r *MemoryRepository) Sample(_ context.Context, excludeID string, size int) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.User, 0, len(r.users))
	for id, u := range r.users {
		if id != excludeID {
			out = append(out, clone(u))
		}
	}
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if len(out) > size {
		out = out[:size]
	}
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.users[user.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if r.conflict(user) {
		return common.ErrorAlreadyExists
	}

	cur.Username = user.Username
	cur.FullName = user.FullName
	cur.Email = user.Email
	cur.PasswordHash = user.PasswordHash
	cur.ProfileImg = user.ProfileImg
	cur.CoverImg = user.CoverImg
	cur.Bio = user.Bio
	cur.Link = user.Link
	cur.UpdatedAt = r.now().UTC()
	return nil
}

func (r *MemoryRepository) set(u *models.User, field SetField) *[]string {
	switch field {
	case FieldFollowers:
		return &u.Followers
	case FieldFollowing:
		return &u.Following
	default:
		return &u.LikedPosts
	}
}

func (r *MemoryRepository) AddToSet(_ context.Context, userID string, field SetField, value string) error {
	if err := field.valid(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	s := r.set(u, field)
	if !slices.Contains(*s, value) {
		*s = append(*s, value)
	}
	u.UpdatedAt = r.now().UTC()
	return nil
}

func (r *MemoryRepository) RemoveFromSet(_ context.Context, userID string, field SetField, value string) error {
	if err := field.valid(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	s := r.set(u, field)
	*s = slices.DeleteFunc(*s, func(v string) bool { return v == value })
	u.UpdatedAt = r.now().UTC()
	return nil
}
