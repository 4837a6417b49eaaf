package bsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStringifyIDsNested(t *testing.T) {
	id1 := primitive.NewObjectID()
	id2 := primitive.NewObjectID()

	// ids buried in a list inside a map inside a list
	in := bson.A{
		bson.M{
			"_id":  id1,
			"name": "kitchen-1",
			"refs": []any{id2, "plain string", 42},
			"meta": bson.D{{Key: "owner", Value: id1}, {Key: "note", Value: "x"}},
		},
	}

	out := StringifyIDs(in)

	want := []any{
		map[string]any{
			"_id":  id1.Hex(),
			"name": "kitchen-1",
			"refs": []any{id2.Hex(), "plain string", 42},
			"meta": map[string]any{"owner": id1.Hex(), "note": "x"},
		},
	}
	assert.Equal(t, want, out)
}

func TestStringifyIDsScalars(t *testing.T) {
	id := primitive.NewObjectID()
	assert.Equal(t, id.Hex(), StringifyIDs(id))
	assert.Equal(t, "untouched", StringifyIDs("untouched"))
	assert.Equal(t, 3.5, StringifyIDs(3.5))
	assert.Nil(t, StringifyIDs(nil))
}

func TestStringifyDocsEmpty(t *testing.T) {
	out := StringifyDocs(nil)
	assert.NotNil(t, out)
	assert.Len(t, out, 0)
}
