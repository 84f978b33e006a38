package model

import (
	"github.com/tidwall/gjson"
)

// FieldCount is the result of counting the top-level fields of a JSON
// document. Malformed covers anything that is not a syntactically valid
// JSON object.
type FieldCount struct {
	N         int
	Malformed bool
}

// Int collapses a malformed document to zero fields. Specificity ranking
// relies on this: an unparsable body ranks like an empty one instead of
// failing the match.
func (c FieldCount) Int() int {
	if c.Malformed {
		return 0
	}
	return c.N
}

// CountJSONFields counts the distinct top-level keys of a JSON object.
func CountJSONFields(raw string) FieldCount {
	if !gjson.Valid(raw) {
		return FieldCount{Malformed: true}
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return FieldCount{Malformed: true}
	}

	keys := make(map[string]struct{})
	doc.ForEach(func(key, _ gjson.Result) bool {
		keys[key.String()] = struct{}{}
		return true
	})
	return FieldCount{N: len(keys)}
}
