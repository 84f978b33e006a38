package services

import (
	"fmt"
	"regexp"

	model "go_capture_proxy/internal/domain/model/endpoint"
	configs "go_capture_proxy/internal/infra/config"
	"go_capture_proxy/internal/infra/storage"
)

type routeEntry struct {
	pattern *regexp.Regexp
	host    string
	capture *bool
}

// RouteResolver maps a request path to its routing decision. The table is
// compiled once and only read afterwards.
type RouteResolver struct {
	entries        []routeEntry
	defaultHost    string
	defaultPattern *regexp.Regexp
	captureState   storage.CaptureStateRepositoryIface
}

// NewRouteResolver compiles the configured routes in declared order.
// A route whose pattern does not compile is a startup error.
func NewRouteResolver(api *configs.ApiConfig, captureState storage.CaptureStateRepositoryIface) (*RouteResolver, error) {
	entries := make([]routeEntry, 0, len(api.Routes))
	for i, rc := range api.Routes {
		re, err := model.CompilePathPattern(rc.Pattern)
		if err != nil {
			return nil, fmt.Errorf("route #%d: %w", i, err)
		}
		entries = append(entries, routeEntry{pattern: re, host: rc.Host, capture: rc.Capture})
	}

	wildcard, err := model.CompilePathPattern(model.WildcardPattern)
	if err != nil {
		return nil, err
	}

	return &RouteResolver{
		entries:        entries,
		defaultHost:    api.Host,
		defaultPattern: wildcard,
		captureState:   captureState,
	}, nil
}

// Resolve returns the first route whose pattern matches the whole path,
// or the default route. It never fails.
func (r *RouteResolver) Resolve(path string) model.RouteConfiguration {
	for _, e := range r.entries {
		if !e.pattern.MatchString(path) {
			continue
		}
		capture := r.CaptureEnabled()
		if e.capture != nil {
			capture = *e.capture
		}
		return model.RouteConfiguration{Host: e.host, PathPattern: e.pattern, CaptureEnabled: capture}
	}

	return model.RouteConfiguration{
		Host:           r.defaultHost,
		PathPattern:    r.defaultPattern,
		CaptureEnabled: r.CaptureEnabled(),
	}
}

// CaptureEnabled reads the global capture state at call time.
func (r *RouteResolver) CaptureEnabled() bool {
	return model.EnabledOrDefault(r.captureState.GetCurrent())
}
