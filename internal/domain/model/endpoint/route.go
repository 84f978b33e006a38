package model

import (
	"fmt"
	"regexp"
)

// WildcardPattern is the pattern of the fallback route.
const WildcardPattern = ".*"

// RouteConfiguration is the routing decision for a request path.
type RouteConfiguration struct {
	Host           string
	PathPattern    *regexp.Regexp
	CaptureEnabled bool
}

// CompilePathPattern compiles p so that it must match the whole path.
func CompilePathPattern(p string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + p + ")$")
	if err != nil {
		return nil, fmt.Errorf("compile path pattern %q: %w", p, err)
	}
	return re, nil
}

// Pattern returns the pattern as configured, without the anchors.
func (c RouteConfiguration) Pattern() string {
	if c.PathPattern == nil {
		return ""
	}
	s := c.PathPattern.String()
	if len(s) >= 6 && s[:4] == "^(?:" && s[len(s)-2:] == ")$" {
		return s[4 : len(s)-2]
	}
	return s
}

func (c RouteConfiguration) String() string {
	return fmt.Sprintf("RouteConfiguration{host=%s, pattern=%s, capture=%t}", c.Host, c.Pattern(), c.CaptureEnabled)
}
