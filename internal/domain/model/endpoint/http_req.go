package model

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// MaxBodySize caps how much of an inbound body is read (10MB).
const MaxBodySize = 10 * 1024 * 1024

// NewRequestFromHTTP normalizes an inbound request. The body is read and
// put back so the caller can still consume it.
func NewRequestFromHTTP(r *http.Request) (Request, error) {
	method, err := ParseMethod(r.Method)
	if err != nil {
		return Request{}, err
	}
	req := NewRequest(method, r.URL.Path)

	if len(r.Header) > 0 {
		req = req.WithHeaders(r.Header)
	}

	if r.URL.RawQuery != "" {
		values := r.URL.Query()
		query := make(map[string]string, len(values))
		for k, v := range values {
			if len(v) > 0 {
				query[k] = v[0]
			} else {
				query[k] = ""
			}
		}
		req = req.WithQuery(query)
	}

	if r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize))
		if err != nil {
			return Request{}, fmt.Errorf("read request body: %w", err)
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
		if len(body) > 0 {
			req = req.WithBody(string(body))
		}
	}
	return req, nil
}
