package posts

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newestFirst orders by creation time; _id breaks ties within a millisecond.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

type commentDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	User      primitive.ObjectID `bson:"user"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type postDocument struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	User      primitive.ObjectID   `bson:"user"`
	Text      string               `bson:"text,omitempty"`
	Img       string               `bson:"img,omitempty"`
	Likes     []primitive.ObjectID `bson:"likes"`
	Comments  []commentDocument    `bson:"comments"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

func (d *postDocument) model() *models.Post {
	p := &models.Post{
		ID:        d.ID.Hex(),
		Author:    d.User.Hex(),
		Text:      d.Text,
		Img:       d.Img,
		Likes:     mongox.Hexes(d.Likes),
		Comments:  make([]models.Comment, 0, len(d.Comments)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, c := range d.Comments {
		p.Comments = append(p.Comments, models.Comment{
			ID: c.ID.Hex(), Author: c.User.Hex(), Text: c.Text, CreatedAt: c.CreatedAt,
		})
	}
	return p
}

// MongoRepository stores posts with likes as an ObjectID array and
// comments as embedded documents appended with $push.
type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll, now: time.Now}
}

func (r *MongoRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	author, err := mongox.ObjectID(post.Author)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	doc := postDocument{
		User:      author,
		Text:      post.Text,
		Img:       post.Img,
		Likes:     []primitive.ObjectID{},
		Comments:  []commentDocument{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.model(), nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := mongox.ObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc postDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err = mongox.NotFound(err); errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.model(), nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := mongox.ObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) update(ctx context.Context, postID string, update bson.M) error {
	oid, err := mongox.ObjectID(postID)
	if err != nil {
		return err
	}
	update["$set"] = bson.M{"updatedAt": r.now().UTC()}

	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) AddLike(ctx context.Context, postID, userID string) error {
	uid, err := mongox.ObjectID(userID)
	if err != nil {
		return err
	}
	return r.update(ctx, postID, bson.M{"$addToSet": bson.M{"likes": uid}})
}

func (r *MongoRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	uid, err := mongox.ObjectID(userID)
	if err != nil {
		return err
	}
	return r.update(ctx, postID, bson.M{"$pull": bson.M{"likes": uid}})
}

func (r *MongoRepository) AppendComment(ctx context.Context, postID string, comment models.Comment) error {
	author, err := mongox.ObjectID(comment.Author)
	if err != nil {
		return err
	}
	doc := commentDocument{
		ID:        primitive.NewObjectID(),
		User:      author,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}
	return r.update(ctx, postID, bson.M{"$push": bson.M{"comments": doc}})
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M) ([]*models.Post, error) {
	opts := options.Find().SetSort(newestFirst)

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	out := make([]*models.Post, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].model())
	}
	return out, nil
}

func (r *MongoRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoRepository) ListByAuthors(ctx context.Context, authorIDs []string) ([]*models.Post, error) {
	oids := mongox.ObjectIDs(authorIDs)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"user": bson.M{"$in": oids}})
}

func (r *MongoRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.Post, error) {
	oids := mongox.ObjectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}
