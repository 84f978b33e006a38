package model

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestFromHTTP(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/orders?id=6&id=7&page=", strings.NewReader(`{"id":6}`))
	r.Header.Set("Content-Type", "application/json")

	req, err := NewRequestFromHTTP(r)
	require.NoError(t, err)

	assert.Equal(t, MethodPost, req.Method())
	assert.Equal(t, "/orders", req.URI())

	q, ok := req.Query()
	require.True(t, ok)
	assert.Equal(t, map[string]string{"id": "6", "page": ""}, q)

	h, ok := req.Headers()
	require.True(t, ok)
	assert.Equal(t, "application/json", h.Get("Content-Type"))

	body, ok := req.Body()
	require.True(t, ok)
	assert.Equal(t, `{"id":6}`, body)

	rest, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"id":6}`, string(rest), "body is put back")
}

func TestNewRequestFromHTTP_Absent(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/orders", nil)
	r.Header = http.Header{}

	req, err := NewRequestFromHTTP(r)
	require.NoError(t, err)

	_, ok := req.Query()
	assert.False(t, ok)
	_, ok = req.Headers()
	assert.False(t, ok)
	_, ok = req.Body()
	assert.False(t, ok)
	assert.False(t, req.IsValid())
}

func TestNewRequestFromHTTP_UnknownMethod(t *testing.T) {
	r := httptest.NewRequest("BREW", "/coffee", nil)
	_, err := NewRequestFromHTTP(r)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}
