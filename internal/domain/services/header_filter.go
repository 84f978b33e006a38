package services

import (
	"net/http"

	configs "go_capture_proxy/internal/infra/config"

	"github.com/google/martian/v3"
	"github.com/google/martian/v3/header"
)

// HeaderFilter strips headers that must not travel to the upstream:
// hop-by-hop headers, Accept-Encoding and the configured drop list.
type HeaderFilter struct {
	reqModifiers  []martian.RequestModifier
	respModifiers []martian.ResponseModifier
}

func NewHeaderFilter(c *configs.ForwardConfig) *HeaderFilter {
	hop := header.NewHopByHopModifier()
	f := &HeaderFilter{
		reqModifiers:  []martian.RequestModifier{hop},
		respModifiers: []martian.ResponseModifier{hop},
	}
	// Accept-Encoding is owned by the transport, which then decodes the
	// upstream body before it is served or captured.
	drop := append([]string{"Accept-Encoding"}, c.DropHeaders...)
	f.reqModifiers = append(f.reqModifiers, header.NewBlacklistModifier(drop...))
	return f
}

// Request returns the headers to forward. The bool is false when nothing
// is left to send.
func (f *HeaderFilter) Request(in http.Header) (http.Header, bool) {
	if len(in) == 0 {
		return nil, false
	}

	scratch := &http.Request{Header: in.Clone()}
	for _, m := range f.reqModifiers {
		if err := m.ModifyRequest(scratch); err != nil {
			return nil, false
		}
	}
	return scratch.Header, len(scratch.Header) > 0
}

// Response drops hop-by-hop headers from an upstream response.
func (f *HeaderFilter) Response(in http.Header) http.Header {
	scratch := &http.Response{Header: in.Clone()}
	if scratch.Header == nil {
		scratch.Header = http.Header{}
	}
	for _, m := range f.respModifiers {
		if err := m.ModifyResponse(scratch); err != nil {
			return in
		}
	}
	return scratch.Header
}
