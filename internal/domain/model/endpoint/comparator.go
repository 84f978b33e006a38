package model

import (
	"cmp"
	"slices"
	"sort"
	"strings"
)

// CompareRequests orders requests by specificity for candidate ranking:
// method name, then uri, then query field count descending, then body
// field count descending. Candidates that tie on all four keys compare
// equal; field identity is not considered.
func CompareRequests(a, b Request) int {
	if c := strings.Compare(string(a.method), string(b.method)); c != 0 {
		return c
	}
	if c := strings.Compare(a.uri, b.uri); c != 0 {
		return c
	}
	if c := cmp.Compare(b.CountQueryFields(), a.CountQueryFields()); c != 0 {
		return c
	}
	return cmp.Compare(b.CountBodyFields(), a.CountBodyFields())
}

// SortEndpoints orders endpoints by their request templates, most specific
// first. The sort is stable, so ties keep their storage order.
func SortEndpoints(endpoints []*Endpoint) {
	sort.SliceStable(endpoints, func(i, j int) bool {
		return CompareRequests(endpoints[i].Request, endpoints[j].Request) < 0
	})
}

// SortByStoredOrder puts endpoints in storage order: creation time, then id.
func SortByStoredOrder(endpoints []*Endpoint) {
	slices.SortStableFunc(endpoints, func(a, b *Endpoint) int {
		if c := cmp.Compare(a.CreatedAt, b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
