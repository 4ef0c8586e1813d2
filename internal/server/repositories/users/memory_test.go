package users

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreate(t *testing.T, r *MemoryRepository, username string) *models.User {
	t.Helper()
	u, err := r.Create(context.Background(), &models.User{Username: username, Email: username + "@example.com"})
	require.NoError(t, err)
	return u
}

func TestMemoryRepository_CreateAndLookup(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	alice := mustCreate(t, r, "alice")

	byName, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	byEmail, err := r.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	_, err = r.Create(ctx, &models.User{Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = r.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	alice := mustCreate(t, r, "alice")

	got, err := r.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	got.Followers = append(got.Followers, "intruder")

	again, err := r.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Followers)
}

func TestMemoryRepository_SetSemantics(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	alice := mustCreate(t, r, "alice")

	require.NoError(t, r.AddToSet(ctx, alice.ID, FieldFollowers, "b"))
	require.NoError(t, r.AddToSet(ctx, alice.ID, FieldFollowers, "b"))
	require.NoError(t, r.RemoveFromSet(ctx, alice.ID, FieldFollowers, "absent"))

	got, _ := r.GetByID(ctx, alice.ID)
	assert.Equal(t, []string{"b"}, got.Followers)

	require.NoError(t, r.RemoveFromSet(ctx, alice.ID, FieldFollowers, "b"))
	got, _ = r.GetByID(ctx, alice.ID)
	assert.Empty(t, got.Followers)

	assert.ErrorIs(t, r.AddToSet(ctx, "missing", FieldFollowing, "b"), common.ErrorNotFound)
	assert.Error(t, r.AddToSet(ctx, alice.ID, SetField("bogus"), "b"))
}

func TestMemoryRepository_ConcurrentAddToSetIsIdempotent(t *testing.T) {
	r := NewMemoryRepository()
	alice := mustCreate(t, r, "alice")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.AddToSet(context.Background(), alice.ID, FieldLikedPosts, fmt.Sprintf("p-%d", i%5))
		}(i)
	}
	wg.Wait()

	got, _ := r.GetByID(context.Background(), alice.ID)
	assert.ElementsMatch(t, []string{"p-0", "p-1", "p-2", "p-3", "p-4"}, got.LikedPosts)
}

func TestMemoryRepository_UpdateKeepsSets(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	alice := mustCreate(t, r, "alice")
	require.NoError(t, r.AddToSet(ctx, alice.ID, FieldFollowing, "b"))

	alice.Bio = "hello"
	alice.Following = nil
	require.NoError(t, r.Update(ctx, alice))

	got, _ := r.GetByID(ctx, alice.ID)
	assert.Equal(t, "hello", got.Bio)
	assert.Equal(t, []string{"b"}, got.Following)

	bob := mustCreate(t, r, "bob")
	bob.Username = "alice"
	assert.ErrorIs(t, r.Update(ctx, bob), common.ErrorAlreadyExists)
}

func TestMemoryRepository_SampleExcludesCaller(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	me := mustCreate(t, r, "me")
	for i := 0; i < 12; i++ {
		mustCreate(t, r, fmt.Sprintf("user%d", i))
	}

	got, err := r.Sample(ctx, me.ID, 10)
	require.NoError(t, err)
	assert.Len(t, got, 10)
	for _, u := range got {
		assert.NotEqual(t, me.ID, u.ID)
	}

	ids, err := r.GetByIDs(ctx, []string{me.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}
