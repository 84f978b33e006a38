package model

// ForwardingResult is the outcome of one live upstream call.
type ForwardingResult struct {
	Response *Response
	Route    RouteConfiguration
}

// Stage is a step of request handling.
type Stage string

const (
	StageReceived  Stage = "RECEIVED"
	StageRouted    Stage = "ROUTED"
	StageMocked    Stage = "MOCKED"
	StageForwarded Stage = "FORWARDED"
	StageCompleted Stage = "COMPLETED"
	StageFailed    Stage = "FAILED"
)

// ProxyOutcome is what the proxy hands back to the HTTP harness.
type ProxyOutcome struct {
	// Source is StageMocked or StageForwarded.
	Source   Stage
	Response *Response
	Route    RouteConfiguration
	// Endpoint is the stored mock that answered, nil when forwarded.
	Endpoint *Endpoint
	// Captured is set when a forwarded exchange was recorded.
	Captured bool
}
