package services

import (
	"net/url"

	model "go_capture_proxy/internal/domain/model/endpoint"
)

// BuildQueryString encodes the request query as "?k=v&..." with keys
// sorted, or "" when the query is absent or empty.
func BuildQueryString(req model.Request) string {
	q, ok := req.Query()
	if !ok || len(q) == 0 {
		return ""
	}

	values := make(url.Values, len(q))
	for k, v := range q {
		values.Set(k, v)
	}
	return "?" + values.Encode()
}
