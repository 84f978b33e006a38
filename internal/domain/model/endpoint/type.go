package model

// EndpointStatus represents whether a stored endpoint takes part in matching.
type EndpointStatus string

const (
	EndpointStatusActive   EndpointStatus = "active"
	EndpointStatusInactive EndpointStatus = "inactive"
)

func (s EndpointStatus) IsValid() bool {
	switch s {
	case EndpointStatusActive, EndpointStatusInactive:
		return true
	default:
		return false
	}
}

func (s EndpointStatus) String() string {
	return string(s)
}

// EndpointSource records how an endpoint was created.
type EndpointSource string

const (
	EndpointSourceManual  EndpointSource = "manual"
	EndpointSourceCapture EndpointSource = "capture"
)

// CaptureMode controls whether an enabled capture bypasses stored mocks.
type CaptureMode string

const (
	// CaptureModeMiss serves stored mocks first and records only misses.
	CaptureModeMiss CaptureMode = "miss"
	// CaptureModeAlways forwards every request on a capturing route.
	CaptureModeAlways CaptureMode = "always"
)
