package configs

import "time"

// ApiConfig is the routing table consumed by the route resolver.
type ApiConfig struct {
	// Host is the default upstream, used when no route matches.
	Host string `yaml:"host" validate:"required,url"`
	// Capture seeds the global capture state at startup. Unset means enabled.
	Capture *bool `yaml:"capture"`
	// CaptureMode is "miss" (default) or "always".
	CaptureMode string `yaml:"captureMode" validate:"omitempty,oneof=miss always"`
	// Routes are evaluated in declared order; the first match wins.
	Routes []RouteEntryConfig `yaml:"routes" validate:"dive"`
}

// RouteEntryConfig maps a path pattern to an upstream host. The pattern
// must match the whole request path.
type RouteEntryConfig struct {
	Pattern string `yaml:"pattern" validate:"required"`
	Host    string `yaml:"host" validate:"required,url"`
	// Capture overrides the global capture state for this route.
	Capture *bool `yaml:"capture"`
}

type ForwardConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	RetryCount  int           `yaml:"retryCount" validate:"min=0"`
	RetryDelay  time.Duration `yaml:"retryDelay"`
	DropHeaders []string      `yaml:"dropHeaders"`
}

type ServerConfig struct {
	ProxyAddr string `yaml:"proxyAddr"`
}
