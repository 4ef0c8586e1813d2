package notifications

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

type notificationDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	From      primitive.ObjectID `bson:"from"`
	To        primitive.ObjectID `bson:"to"`
	Type      string             `bson:"type"`
	Read      bool               `bson:"read"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *notificationDocument) model() *models.Notification {
	return &models.Notification{
		ID:        d.ID.Hex(),
		From:      d.From.Hex(),
		To:        d.To.Hex(),
		Kind:      models.NotificationKind(d.Type),
		Read:      d.Read,
		CreatedAt: d.CreatedAt,
	}
}

type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll, now: time.Now}
}

func (r *MongoRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	from, err := mongox.ObjectID(n.From)
	if err != nil {
		return nil, err
	}
	to, err := mongox.ObjectID(n.To)
	if err != nil {
		return nil, err
	}

	doc := notificationDocument{From: from, To: to, Type: string(n.Kind), Read: n.Read, CreatedAt: n.CreatedAt}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = r.now().UTC()
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.model(), nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	oid, err := mongox.ObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc notificationDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err = mongox.NotFound(err); errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.model(), nil
}

func (r *MongoRepository) ListByRecipient(ctx context.Context, recipientID string) ([]*models.Notification, error) {
	to, err := mongox.ObjectID(recipientID)
	if err != nil {
		return nil, nil
	}

	opts := options.Find().SetSort(newestFirst)
	cur, err := r.coll.Find(ctx, bson.M{"to": to}, opts)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var docs []notificationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	out := make([]*models.Notification, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].model())
	}
	return out, nil
}

func (r *MongoRepository) MarkRead(ctx context.Context, ids []string) error {
	oids := mongox.ObjectIDs(ids)
	if len(oids) == 0 {
		return nil
	}
	_, err := r.coll.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": oids}}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	to, err := mongox.ObjectID(recipientID)
	if err != nil {
		return 0, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"to": to, "read": false})
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
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

func (r *MongoRepository) DeleteByRecipient(ctx context.Context, recipientID string) (int64, error) {
	to, err := mongox.ObjectID(recipientID)
	if err != nil {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"to": to})
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.DeletedCount, nil
}
