package model

import (
	"errors"
	"fmt"
	"strings"
)

// Method is the fixed set of HTTP verbs a Request may carry.
type Method string

const (
	MethodDelete  Method = "DELETE"
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodPatch   Method = "PATCH"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodTrace   Method = "TRACE"
)

var ErrUnknownMethod = errors.New("unknown http method")

// ParseMethod maps a verb (any case) to the enumeration.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
	return m, nil
}

func (m Method) IsValid() bool {
	switch m {
	case MethodDelete, MethodGet, MethodHead, MethodOptions,
		MethodPatch, MethodPost, MethodPut, MethodTrace:
		return true
	default:
		return false
	}
}

func (m Method) String() string {
	return string(m)
}
