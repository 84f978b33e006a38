package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEquivalenceFilter_Apply(t *testing.T) {
	tests := []struct {
		name        string
		template    string
		hasTemplate bool
		incoming    string
		hasIncoming bool
		want        bool
	}{
		{name: "no template, no body", want: true},
		{name: "no template, any body", incoming: `{"id":7}`, hasIncoming: true, want: true},
		{name: "empty template string", template: "  ", hasTemplate: true, want: true},
		{name: "empty template object", template: "{}", hasTemplate: true, want: true},
		{name: "equal fields", template: `{"id":6}`, hasTemplate: true, incoming: `{"id":6}`, hasIncoming: true, want: true},
		{name: "subset match", template: `{"id":6}`, hasTemplate: true, incoming: `{"id":6,"extra":"x"}`, hasIncoming: true, want: true},
		{name: "field order and whitespace", template: `{"a":1,"b":"x"}`, hasTemplate: true, incoming: "{ \"b\" : \"x\",\n \"a\" : 1 }", hasIncoming: true, want: true},
		{name: "numeric representation", template: `{"id":6}`, hasTemplate: true, incoming: `{"id":6.0}`, hasIncoming: true, want: true},
		{name: "nested objects", template: `{"item":{"a":1,"b":[1,2]}}`, hasTemplate: true, incoming: `{"item":{"b":[1,2],"a":1}}`, hasIncoming: true, want: true},
		{name: "different value", template: `{"id":6}`, hasTemplate: true, incoming: `{"id":7}`, hasIncoming: true, want: false},
		{name: "different type", template: `{"id":6}`, hasTemplate: true, incoming: `{"id":"6"}`, hasIncoming: true, want: false},
		{name: "missing field", template: `{"id":6,"name":"x"}`, hasTemplate: true, incoming: `{"id":6}`, hasIncoming: true, want: false},
		{name: "absent incoming", template: `{"id":6}`, hasTemplate: true, want: false},
		{name: "unparsable incoming", template: `{"id":6}`, hasTemplate: true, incoming: `{"id":`, hasIncoming: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EquivalenceFilter{}.Apply(tt.template, tt.hasTemplate, tt.incoming, tt.hasIncoming)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEquivalenceFilter_MalformedTemplate(t *testing.T) {
	for _, tpl := range []string{`{"id":`, `[1,2]`, `"text"`, `not json`} {
		got, err := EquivalenceFilter{}.Apply(tpl, true, `{"id":6}`, true)
		assert.ErrorIs(t, err, ErrMalformedTemplate, tpl)
		assert.False(t, got)
	}
}
