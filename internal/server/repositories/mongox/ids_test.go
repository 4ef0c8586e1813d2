package mongox

import (
	"fmt"
	"testing"

	"github.com/abanwa/twitter/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestObjectID(t *testing.T) {
	want := primitive.NewObjectID()

	got, err := ObjectID(want.Hex())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ObjectID("not-hex")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestObjectIDsAndHexes(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	oids := ObjectIDs([]string{a.Hex(), "junk", b.Hex()})
	assert.Equal(t, []primitive.ObjectID{a, b}, oids)
	assert.Equal(t, []string{a.Hex(), b.Hex()}, Hexes(oids))
	assert.Empty(t, Hexes(nil))
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, NotFound(fmt.Errorf("find: %w", mongo.ErrNoDocuments)), common.ErrorNotFound)

	other := fmt.Errorf("boom")
	assert.Equal(t, other, NotFound(other))
}
