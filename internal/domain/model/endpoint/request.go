package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Request is a normalized inbound HTTP request. It is immutable: the With*
// and Without* helpers return modified copies and never share maps with
// the receiver.
//
// Headers, query and body each carry a presence flag, so "absent" and
// "present but empty" stay distinguishable.
type Request struct {
	method Method
	uri    string

	headers    http.Header
	hasHeaders bool

	query    map[string]string
	hasQuery bool

	body    string
	hasBody bool
}

func NewRequest(method Method, uri string) Request {
	return Request{method: method, uri: uri}
}

func (r Request) Method() Method { return r.method }

func (r Request) URI() string { return r.uri }

// Headers returns a copy of the headers and whether they are present.
func (r Request) Headers() (http.Header, bool) {
	return r.headers.Clone(), r.hasHeaders
}

// Query returns a copy of the query parameters and whether they are present.
func (r Request) Query() (map[string]string, bool) {
	return maps.Clone(r.query), r.hasQuery
}

func (r Request) Body() (string, bool) {
	return r.body, r.hasBody
}

// WithHeaders sets the headers. A nil header marks them absent.
func (r Request) WithHeaders(h http.Header) Request {
	r.headers = h.Clone()
	r.hasHeaders = h != nil
	return r
}

func (r Request) WithoutHeaders() Request {
	r.headers, r.hasHeaders = nil, false
	return r
}

// WithQuery sets the query parameters. A nil map marks them absent.
func (r Request) WithQuery(q map[string]string) Request {
	r.query = maps.Clone(q)
	r.hasQuery = q != nil
	return r
}

func (r Request) WithoutQuery() Request {
	r.query, r.hasQuery = nil, false
	return r
}

func (r Request) WithBody(body string) Request {
	r.body, r.hasBody = body, true
	return r
}

func (r Request) WithoutBody() Request {
	r.body, r.hasBody = "", false
	return r
}

// CountQueryFields returns the number of query parameters, 0 when absent.
func (r Request) CountQueryFields() int {
	if !r.hasQuery {
		return 0
	}
	return len(r.query)
}

// CountBodyFields returns the number of top-level fields of the JSON body.
// An absent or unparsable body counts as zero.
func (r Request) CountBodyFields() int {
	if !r.hasBody {
		return 0
	}
	return CountJSONFields(r.body).Int()
}

// IsValid reports whether the request carries enough to act as a mock
// matching candidate: non-empty headers, or at least one body or query field.
func (r Request) IsValid() bool {
	return (r.hasHeaders && len(r.headers) > 0) ||
		r.CountBodyFields() > 0 ||
		r.CountQueryFields() > 0
}

// Equal is structural equality over all five fields, presence included.
func (r Request) Equal(o Request) bool {
	if r.method != o.method || r.uri != o.uri {
		return false
	}
	if r.hasHeaders != o.hasHeaders || r.hasQuery != o.hasQuery || r.hasBody != o.hasBody {
		return false
	}
	if !maps.EqualFunc(r.headers, o.headers, func(a, b []string) bool { return slices.Equal(a, b) }) {
		return false
	}
	return maps.Equal(r.query, o.query) && r.body == o.body
}

func (r Request) String() string {
	sb := &strings.Builder{}
	_, _ = fmt.Fprintf(sb, "%s %s", r.method, r.uri)
	if r.hasQuery {
		_, _ = fmt.Fprintf(sb, " query=%v", r.query)
	}
	if r.hasHeaders {
		_, _ = fmt.Fprintf(sb, " headers=%d", len(r.headers))
	}
	if r.hasBody {
		_, _ = fmt.Fprintf(sb, " body=%dB", len(r.body))
	}
	return sb.String()
}

type requestJSON struct {
	Method  Method             `json:"method"`
	URI     string             `json:"uri"`
	Headers *http.Header       `json:"headers,omitempty"`
	Query   *map[string]string `json:"query,omitempty"`
	Body    *string            `json:"body,omitempty"`
}

func (r Request) MarshalJSON() ([]byte, error) {
	aux := requestJSON{Method: r.method, URI: r.uri}
	if r.hasHeaders {
		h := r.headers.Clone()
		if h == nil {
			h = http.Header{}
		}
		aux.Headers = &h
	}
	if r.hasQuery {
		q := maps.Clone(r.query)
		if q == nil {
			q = map[string]string{}
		}
		aux.Query = &q
	}
	if r.hasBody {
		b := r.body
		aux.Body = &b
	}
	return json.Marshal(aux)
}

func (r *Request) UnmarshalJSON(data []byte) error {
	var aux requestJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	method, err := ParseMethod(string(aux.Method))
	if err != nil {
		return err
	}

	req := NewRequest(method, aux.URI)
	if aux.Headers != nil {
		req = req.WithHeaders(*aux.Headers)
		if req.headers == nil {
			req.headers = http.Header{}
		}
	}
	if aux.Query != nil {
		req = req.WithQuery(*aux.Query)
		if req.query == nil {
			req.query = map[string]string{}
		}
	}
	if aux.Body != nil {
		req = req.WithBody(*aux.Body)
	}
	*r = req
	return nil
}

// Scan implements sql.Scanner for the JSON column form.
func (r *Request) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return r.UnmarshalJSON(v)
	case string:
		return r.UnmarshalJSON([]byte(v))
	default:
		return errors.New("unsupported request column type")
	}
}

func (r Request) Value() (driver.Value, error) {
	b, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
