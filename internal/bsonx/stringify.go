// Package bsonx holds helpers for moving raw BSON documents across the
// JSON boundary.
package bsonx

import (
	"fleetd/internal/logs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StringifyIDs walks an arbitrarily nested document/array/scalar tree and
// converts every primitive.ObjectID to its hex string. bson.D nodes are
// rewritten as maps so they serialize as JSON objects. Plain strings pass
// through unchanged; any other scalar is logged and passed through.
func StringifyIDs(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case string:
		return t
	case bson.M:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = StringifyIDs(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = StringifyIDs(val)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = StringifyIDs(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = StringifyIDs(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = StringifyIDs(val)
		}
		return out
	case []bson.M:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = StringifyIDs(val)
		}
		return out
	default:
		logs.Logger.Tracef("stringify: passing through %T", v)
		return v
	}
}

// StringifyDocs is StringifyIDs over a slice of raw documents, keeping a
// non-nil result so empty lists encode as [] rather than null.
func StringifyDocs(docs []bson.M) []any {
	out := make([]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, StringifyIDs(d))
	}
	return out
}
