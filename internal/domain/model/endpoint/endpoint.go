package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EndpointIface interface {
	Matches(req Request) (bool, error)
	Respond(ctx context.Context, req Request) (*Response, error)
}

var _ EndpointIface = (*Endpoint)(nil)

// Endpoint is a stored mock definition: a request template that incoming
// requests are matched against, and the response served on a match.
type Endpoint struct {
	ID         string           `gorm:"primaryKey;type:varchar(36)" json:"id" redis:"id"`
	Name       string           `gorm:"type:varchar(100)" json:"name" redis:"name"`
	Request    Request          `gorm:"type:json" json:"request" redis:"request"`
	Response   ResponseTemplate `gorm:"type:json" json:"response" redis:"response"`
	Status     EndpointStatus   `gorm:"type:varchar(20);index" json:"status" redis:"status"`
	Source     EndpointSource   `gorm:"type:varchar(20)" json:"source" redis:"source"`
	Method     string           `gorm:"type:varchar(10)" json:"method"`
	URI        string           `gorm:"type:varchar(255)" json:"uri"`
	MatchIndex string           `gorm:"type:varchar(255);index:idx_match" json:"match_index"`
	CreatedAt  int64            `gorm:"autoCreateTime:milli" json:"createdAt" redis:"created_at"`
	UpdatedAt  int64            `gorm:"autoUpdateTime:milli" json:"updatedAt" redis:"updated_at"`
}

// EndpointFilter narrows endpoint listings.
type EndpointFilter struct {
	EndpointID  *string
	Method      *string
	Status      *EndpointStatus
	Source      *EndpointSource
	URIContains *string
	MatchIndex  *string
}

// captureNamespace seeds deterministic ids for captured endpoints.
var captureNamespace = uuid.MustParse("6f1c8f0e-3b7a-4d0e-9a51-2c4b8d9e7f10")

// NewCapturedEndpoint builds an endpoint from a live exchange. The id is
// derived from the request template, so capturing the same request again
// replaces the previous recording. A body that is not a JSON object cannot
// serve as a template and is left out, so the recording matches on method,
// uri and query only.
func NewCapturedEndpoint(req Request, resp *Response) (*Endpoint, error) {
	if body, ok := req.Body(); ok && strings.TrimSpace(body) != "" && CountJSONFields(body).Malformed {
		req = req.WithoutBody()
	}

	key, err := req.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal captured request: %w", err)
	}

	headers := make(map[string]string, len(resp.Headers))
	for k := range resp.Headers {
		headers[k] = resp.Headers.Get(k)
	}

	ep := &Endpoint{
		ID:      uuid.NewSHA1(captureNamespace, key).String(),
		Name:    fmt.Sprintf("capture %s %s", req.Method(), req.URI()),
		Request: req,
		Response: ResponseTemplate{
			StatusCode: resp.StatusCode,
			Headers:    headers,
		},
		Status: EndpointStatusActive,
		Source: EndpointSourceCapture,
	}
	if isTextBody(resp.Headers) {
		ep.Response.Body = string(resp.Body)
	} else {
		ep.Response.BodyBytes = resp.Body
	}
	ep.syncIndex()
	return ep, nil
}

// ValidateTemplate rejects endpoints that could never be matched or served.
func (e *Endpoint) ValidateTemplate() error {
	if !e.Request.Method().IsValid() {
		return fmt.Errorf("invalid method %q", e.Request.Method())
	}
	if e.Request.URI() == "" {
		return errors.New("missing request uri")
	}
	if body, ok := e.Request.Body(); ok {
		if _, err := (EquivalenceFilter{}).Apply(body, true, "{}", true); err != nil {
			return err
		}
	}
	return e.Response.Validate()
}

// Matches checks method, uri, declared headers, declared query parameters
// and the body. Only a malformed template body yields an error.
func (e *Endpoint) Matches(req Request) (bool, error) {
	tpl := e.Request
	if tpl.Method() != req.Method() || tpl.URI() != req.URI() {
		return false, nil
	}

	if tplHeaders, ok := tpl.Headers(); ok && len(tplHeaders) > 0 {
		reqHeaders, _ := req.Headers()
		for name := range tplHeaders {
			if reqHeaders.Get(name) != tplHeaders.Get(name) {
				return false, nil
			}
		}
	}

	if tplQuery, ok := tpl.Query(); ok && len(tplQuery) > 0 {
		reqQuery, _ := req.Query()
		for k, v := range tplQuery {
			if got, ok := reqQuery[k]; !ok || got != v {
				return false, nil
			}
		}
	}

	tplBody, hasTplBody := tpl.Body()
	reqBody, hasReqBody := req.Body()
	ok, err := EquivalenceFilter{}.Apply(tplBody, hasTplBody, reqBody, hasReqBody)
	if err != nil {
		return false, fmt.Errorf("endpoint [%s]: %w", e.ID, err)
	}
	return ok, nil
}

// Respond renders the stored response for req.
func (e *Endpoint) Respond(_ context.Context, req Request) (*Response, error) {
	if e.Status != EndpointStatusActive {
		return nil, fmt.Errorf("endpoint [%s] is not active (status: %s)", e.ID, e.Status)
	}
	return e.Response.Render(req)
}

func (e *Endpoint) BeforeSave(_ *gorm.DB) error {
	e.syncIndex()
	return nil
}

func (e *Endpoint) syncIndex() {
	e.Method = e.Request.Method().String()
	e.URI = e.Request.URI()
	e.MatchIndex = BuildMatchIndexKeyFromEndpoint(e)
}

// isTextBody reports whether a captured body can be stored as a string.
// Encoded payloads (gzip, br, ...) are kept as bytes.
func isTextBody(h http.Header) bool {
	if enc := strings.ToLower(strings.TrimSpace(h.Get("Content-Encoding"))); enc != "" && enc != "identity" {
		return false
	}
	ct := strings.ToLower(h.Get("Content-Type"))
	if ct == "" {
		return true
	}
	for _, text := range []string{"json", "text/", "xml", "javascript", "x-www-form-urlencoded"} {
		if strings.Contains(ct, text) {
			return true
		}
	}
	return false
}
