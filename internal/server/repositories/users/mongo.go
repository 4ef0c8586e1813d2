package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/abanwa/twitter/internal/server/repositories/mongox"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userDocument struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	Username   string               `bson:"username"`
	FullName   string               `bson:"fullName"`
	Email      string               `bson:"email"`
	Password   string               `bson:"password"`
	Followers  []primitive.ObjectID `bson:"followers"`
	Following  []primitive.ObjectID `bson:"following"`
	LikedPosts []primitive.ObjectID `bson:"likedPosts"`
	ProfileImg string               `bson:"profileImg"`
	CoverImg   string               `bson:"coverImg"`
	Bio        string               `bson:"bio"`
	Link       string               `bson:"link"`
	CreatedAt  time.Time            `bson:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt"`
}

func (d *userDocument) model() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		FullName:     d.FullName,
		Email:        d.Email,
		PasswordHash: d.Password,
		Followers:    mongox.Hexes(d.Followers),
		Following:    mongox.Hexes(d.Following),
		LikedPosts:   mongox.Hexes(d.LikedPosts),
		ProfileImg:   d.ProfileImg,
		CoverImg:     d.CoverImg,
		Bio:          d.Bio,
		Link:         d.Link,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// MongoRepository stores users in one collection with the id sets held as
// ObjectID arrays, updated with $addToSet and $pull.
type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll, now: time.Now}
}

func (r *MongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := r.now().UTC()
	doc := userDocument{
		Username:   user.Username,
		FullName:   user.FullName,
		Email:      user.Email,
		Password:   user.PasswordHash,
		Followers:  []primitive.ObjectID{},
		Following:  []primitive.ObjectID{},
		LikedPosts: []primitive.ObjectID{},
		ProfileImg: user.ProfileImg,
		CoverImg:   user.CoverImg,
		Bio:        user.Bio,
		Link:       user.Link,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %v", common.ErrorAlreadyExists, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.model(), nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err = mongox.NotFound(err); errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.model(), nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := mongox.ObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]*models.User, error) {
	defer cur.Close(ctx)

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	out := make([]*models.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].model())
	}
	return out, nil
}

func (r *MongoRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	oids := mongox.ObjectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return decodeAll(ctx, cur)
}

func (r *MongoRepository) Sample(ctx context.Context, excludeID string, size int) ([]*models.User, error) {
	match := bson.M{}
	if oid, err := mongox.ObjectID(excludeID); err == nil {
		match["_id"] = bson.M{"$ne": oid}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sample", Value: bson.M{"size": size}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return decodeAll(ctx, cur)
}

func (r *MongoRepository) Update(ctx context.Context, user *models.User) error {
	oid, err := mongox.ObjectID(user.ID)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"username":   user.Username,
		"fullName":   user.FullName,
		"email":      user.Email,
		"password":   user.PasswordHash,
		"profileImg": user.ProfileImg,
		"coverImg":   user.CoverImg,
		"bio":        user.Bio,
		"link":       user.Link,
		"updatedAt":  r.now().UTC(),
	}}

	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", common.ErrorAlreadyExists, err)
		}
		return fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) AddToSet(ctx context.Context, userID string, field SetField, value string) error {
	return r.updateSet(ctx, "$addToSet", userID, field, value)
}

func (r *MongoRepository) RemoveFromSet(ctx context.Context, userID string, field SetField, value string) error {
	return r.updateSet(ctx, "$pull", userID, field, value)
}

func (r *MongoRepository) updateSet(ctx context.Context, op, userID string, field SetField, value string) error {
	if err := field.valid(); err != nil {
		return err
	}
	oid, err := mongox.ObjectID(userID)
	if err != nil {
		return err
	}
	member, err := mongox.ObjectID(value)
	if err != nil {
		return err
	}

	update := bson.M{
		op:     bson.M{string(field): member},
		"$set": bson.M{"updatedAt": r.now().UTC()},
	}
	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}
