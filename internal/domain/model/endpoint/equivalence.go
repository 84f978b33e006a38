package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrMalformedTemplate = errors.New("malformed template body")

// EquivalenceFilter decides whether an incoming body satisfies a stored
// template body. Every field declared by the template must be present in
// the incoming body with an equal value; extra incoming fields are ignored.
// Field order and whitespace do not matter.
type EquivalenceFilter struct{}

// Apply returns ErrMalformedTemplate when the template is not a JSON object.
// Problems with the incoming body only ever produce false.
func (EquivalenceFilter) Apply(template string, hasTemplate bool, incoming string, hasIncoming bool) (bool, error) {
	if !hasTemplate || strings.TrimSpace(template) == "" {
		return true, nil
	}

	required, err := objectFields(template)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}
	if len(required) == 0 {
		return true, nil
	}

	if !hasIncoming {
		return false, nil
	}
	actual, err := objectFields(incoming)
	if err != nil {
		return false, nil
	}

	for key, want := range required {
		got, ok := actual[key]
		if !ok {
			return false, nil
		}
		if !reflect.DeepEqual(want.Value(), got.Value()) {
			return false, nil
		}
	}
	return true, nil
}

func objectFields(raw string) (map[string]gjson.Result, error) {
	if !gjson.Valid(raw) {
		return nil, errors.New("invalid json")
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return nil, fmt.Errorf("expected json object, got %s", doc.Type)
	}
	fields := make(map[string]gjson.Result)
	doc.ForEach(func(key, value gjson.Result) bool {
		fields[key.String()] = value
		return true
	})
	return fields, nil
}
