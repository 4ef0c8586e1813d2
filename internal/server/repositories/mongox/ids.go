// Package mongox holds small helpers shared by the MongoDB repositories.
package mongox

import (
	"errors"

	"github.com/abanwa/twitter/internal/common"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ObjectID parses a hex id. Ids that cannot name a document are reported as
// not found rather than as bad input.
func ObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.ErrorNotFound
	}
	return oid, nil
}

// ObjectIDs parses ids, skipping those that are not valid hex.
func ObjectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

// Hexes is the inverse of ObjectIDs.
func Hexes(oids []primitive.ObjectID) []string {
	out := make([]string, 0, len(oids))
	for _, oid := range oids {
		out = append(out, oid.Hex())
	}
	return out
}

// NotFound maps mongo.ErrNoDocuments to common.ErrorNotFound.
func NotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return common.ErrorNotFound
	}
	return err
}
