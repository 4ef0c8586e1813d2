package users

import (
	"context"
	"testing"
	"time"

	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func userDoc(id primitive.ObjectID, username string, followers ...primitive.ObjectID) bson.D {
	if followers == nil {
		followers = []primitive.ObjectID{}
	}
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: username},
		{Key: "fullName", Value: "Full " + username},
		{Key: "email", Value: username + "@example.com"},
		{Key: "password", Value: "hash"},
		{Key: "followers", Value: followers},
		{Key: "following", Value: []primitive.ObjectID{}},
		{Key: "likedPosts", Value: []primitive.ObjectID{}},
		{Key: "createdAt", Value: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		got, err := repo.Create(ctx, &models.User{Username: "alice", Email: "a@example.com", PasswordHash: "hash"})
		require.NoError(mt, err)
		assert.Len(mt, got.ID, 24)
		assert.Equal(mt, "alice", got.Username)
		assert.Empty(mt, got.Followers)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		_, err := repo.Create(ctx, &models.User{Username: "alice"})
		assert.ErrorIs(mt, err, common.ErrorAlreadyExists)
	})

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		id, follower := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch, userDoc(id, "bob", follower)))

		got, err := repo.GetByID(ctx, id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), got.ID)
		assert.Equal(mt, []string{follower.Hex()}, got.Followers)
		assert.Equal(mt, "hash", got.PasswordHash)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch))

		_, err := repo.GetByID(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, common.ErrorNotFound)
	})

	mt.Run("get by malformed id", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)

		_, err := repo.GetByID(ctx, "42")
		assert.ErrorIs(mt, err, common.ErrorNotFound)
	})

	mt.Run("get by ids", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch, userDoc(a, "a"), userDoc(b, "b")))

		got, err := repo.GetByIDs(ctx, []string{a.Hex(), b.Hex()})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "b", got[1].Username)
	})

	mt.Run("sample", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch,
			userDoc(primitive.NewObjectID(), "x"), userDoc(primitive.NewObjectID(), "y")))

		got, err := repo.Sample(ctx, primitive.NewObjectID().Hex(), 10)
		require.NoError(mt, err)
		assert.Len(mt, got, 2)
	})

	mt.Run("add to set", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		err := repo.AddToSet(ctx, primitive.NewObjectID().Hex(), FieldFollowers, primitive.NewObjectID().Hex())
		require.NoError(mt, err)
	})

	mt.Run("add to set on missing user", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.AddToSet(ctx, primitive.NewObjectID().Hex(), FieldFollowing, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, common.ErrorNotFound)
	})

	mt.Run("remove from set command error", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "boom", Name: "BadValue"}))

		err := repo.RemoveFromSet(ctx, primitive.NewObjectID().Hex(), FieldLikedPosts, primitive.NewObjectID().Hex())
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "db error")
	})

	mt.Run("update", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		err := repo.Update(ctx, &models.User{ID: primitive.NewObjectID().Hex(), Username: "alice2"})
		require.NoError(mt, err)
	})
}
