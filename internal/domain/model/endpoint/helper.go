package model

import (
	"regexp"
	"strings"
)

var (
	paramSegment   = regexp.MustCompile(`\{[^}]+\}|:\w+`)
	regexSegment   = regexp.MustCompile(`(/[^/]*[+*?[\]{}\\][^/]*)`)
	numericSegment = regexp.MustCompile(`(/[\d]+)`)
	repeatedStar   = regexp.MustCompile(`/\*(\*)+`)
)

// NormalizePath replaces the dynamic parts of a path with *
//
//	/api/order/42              => /api/order/*
//	^/api/user/\d+$            => /api/user/*
//	/api/order/{order_id}      => /api/order/*
//	/api/product/[a-zA-Z0-9]+  => /api/product/*
func NormalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimPrefix(path, "^")
	path = strings.TrimSuffix(path, "$")

	path = paramSegment.ReplaceAllString(path, "*")
	path = regexSegment.ReplaceAllString(path, "/*")
	path = numericSegment.ReplaceAllString(path, "/*")
	path = repeatedStar.ReplaceAllString(path, "/*")

	return path
}

func BuildMatchIndexKeyFromEndpoint(e *Endpoint) string {
	return BuildMatchIndexKey(e.Request.Method().String(), e.Request.URI())
}

func BuildMatchIndexKeyFromRequest(req Request) string {
	return BuildMatchIndexKey(req.Method().String(), req.URI())
}

// BuildMatchIndexKey groups endpoints that can possibly match the same
// request. Exact matching happens afterwards in Endpoint.Matches.
func BuildMatchIndexKey(method string, path string) string {
	if method == "" {
		method = "*"
	}
	return strings.Join([]string{"http", strings.ToLower(method), NormalizePath(path)}, "_")
}
